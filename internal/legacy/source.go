package legacy

import (
	"context"
	"time"
)

// Source reads rows from the legacy export.
type Source interface {
	// Select returns the rows of q.Table matching every predicate, in q.OrderBy order.
	// Returns an empty slice when nothing matches.
	Select(ctx context.Context, q Query) ([]Record, error)
}

type operator int

const (
	opEq operator = iota
	opAfter
)

// Predicate restricts a Query on a single column.
type Predicate struct {
	Column string
	Value  interface{}
	op     operator
}

// Eq matches rows whose column equals value.
func Eq(column string, value interface{}) Predicate {
	return Predicate{Column: column, Value: value, op: opEq}
}

// After matches rows whose column is strictly later than t.
func After(column string, t time.Time) Predicate {
	return Predicate{Column: column, Value: t, op: opAfter}
}

// RowID orders rows by their position in the export, which is the order the
// legacy application wrote them in.
const RowID = "rowid"

// Query describes a single-table read.
type Query struct {
	Table   string
	Where   []Predicate
	OrderBy []string
}

// From starts a query on table.
func From(table string) Query {
	return Query{Table: table}
}

// Filter returns a copy of q with extra predicates.
func (q Query) Filter(p ...Predicate) Query {
	where := make([]Predicate, 0, len(q.Where)+len(p))
	q.Where = append(append(where, q.Where...), p...)
	return q
}

// Order returns a copy of q sorted by columns.
func (q Query) Order(columns ...string) Query {
	q.OrderBy = append(append([]string(nil), q.OrderBy...), columns...)
	return q
}
