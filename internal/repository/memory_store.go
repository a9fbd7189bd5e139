package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/stwalsh4118/reclaim/internal/models"
)

// MemoryStore keeps rows in memory. It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]models.Row
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]models.Row)}
}

func (m *MemoryStore) Exists(ctx context.Context, table string, where sq.Eq) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(match(m.tables[table], where)) > 0, nil
}

func (m *MemoryStore) Insert(ctx context.Context, table string, row models.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], copyRow(row))
	return nil
}

func (m *MemoryStore) Select(ctx context.Context, table string, where sq.Eq) ([]models.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return match(m.tables[table], where), nil
}

// WithinTx stages writes and applies them only when fn succeeds.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(RowStore) error) error {
	tx := &memoryTx{parent: m, pending: make(map[string][]models.Row)}
	if err := fn(tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, table := range tx.order {
		m.tables[table] = append(m.tables[table], tx.pending[table]...)
	}
	return nil
}

// Rows returns a copy of every row of table in insertion order.
func (m *MemoryStore) Rows(table string) []models.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return match(m.tables[table], nil)
}

// Count returns the number of rows in table.
func (m *MemoryStore) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

// Tables returns the names of all tables holding rows, sorted.
func (m *MemoryStore) Tables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.tables))
	for name, rows := range m.tables {
		if len(rows) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type memoryTx struct {
	parent  *MemoryStore
	pending map[string][]models.Row
	order   []string
}

func (t *memoryTx) Exists(ctx context.Context, table string, where sq.Eq) (bool, error) {
	if len(match(t.pending[table], where)) > 0 {
		return true, nil
	}
	return t.parent.Exists(ctx, table, where)
}

func (t *memoryTx) Insert(ctx context.Context, table string, row models.Row) error {
	if _, ok := t.pending[table]; !ok {
		t.order = append(t.order, table)
	}
	t.pending[table] = append(t.pending[table], copyRow(row))
	return nil
}

func (t *memoryTx) Select(ctx context.Context, table string, where sq.Eq) ([]models.Row, error) {
	rows, err := t.parent.Select(ctx, table, where)
	if err != nil {
		return nil, err
	}
	return append(rows, match(t.pending[table], where)...), nil
}

func (t *memoryTx) WithinTx(ctx context.Context, fn func(RowStore) error) error {
	return fn(t)
}

func match(rows []models.Row, where sq.Eq) []models.Row {
	out := make([]models.Row, 0)
	for _, row := range rows {
		if matches(row, where) {
			out = append(out, copyRow(row))
		}
	}
	return out
}

func matches(row models.Row, where sq.Eq) bool {
	for column, want := range where {
		if !SameValue(row[column], want) {
			return false
		}
	}
	return true
}

func copyRow(row models.Row) models.Row {
	out := make(models.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// SameValue compares two column values the way a database would:
// integers of any width are equal when their values are, nil equals nil.
func SameValue(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := asInt(a); ok {
		bi, ok := asInt(b)
		return ok && ai == bi
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
