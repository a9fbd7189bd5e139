package legacy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemorySource serves legacy rows from memory.
type MemorySource struct {
	mu     sync.RWMutex
	tables map[string][]Record
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{tables: make(map[string][]Record)}
}

// Add appends rows to table. Column names are lower-cased.
func (m *MemorySource) Add(table string, rows ...map[string]interface{}) *MemorySource {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(table)
	for _, row := range rows {
		m.tables[key] = append(m.tables[key], NewRecord(row))
	}
	return m
}

func (m *MemorySource) Select(ctx context.Context, q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type row struct {
		pos int
		rec Record
	}
	matched := make([]row, 0)
	for pos, rec := range m.tables[strings.ToLower(q.Table)] {
		ok, err := accepts(rec, q.Where)
		if err != nil {
			return nil, fmt.Errorf("failed to filter %s: %w", q.Table, err)
		}
		if ok {
			matched = append(matched, row{pos: pos + 1, rec: rec})
		}
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, column := range q.OrderBy {
				var c int
				if strings.EqualFold(column, RowID) {
					c = compare(matched[i].pos, matched[j].pos)
				} else {
					c = compare(matched[i].rec.Raw(column), matched[j].rec.Raw(column))
				}
				if c != 0 {
					return c < 0
				}
			}
			return false
		})
	}

	out := make([]Record, len(matched))
	for i, r := range matched {
		out[i] = r.rec
	}
	return out, nil
}

func accepts(rec Record, where []Predicate) (bool, error) {
	for _, p := range where {
		switch p.op {
		case opAfter:
			t, err := rec.Time(p.Column)
			if err != nil {
				return false, err
			}
			if t == nil || !t.After(p.Value.(time.Time)) {
				return false, nil
			}
		default:
			if compare(rec.Raw(p.Column), p.Value) != 0 {
				return false, nil
			}
		}
	}
	return true, nil
}

// compare orders values the way SQLite would for the types the export uses.
// Nil sorts first.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if af, ok := number(a); ok {
		if bf, ok := number(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
