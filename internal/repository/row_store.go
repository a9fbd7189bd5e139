package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/stwalsh4118/reclaim/internal/models"
)

// RowStore is the target store as seen by the importers.
type RowStore interface {
	// Exists reports whether a row of table matches every column in where.
	Exists(ctx context.Context, table string, where sq.Eq) (bool, error)

	// Insert writes a single row.
	Insert(ctx context.Context, table string, row models.Row) error

	// Select returns all rows of table that match where.
	// Returns an empty slice when nothing matches.
	Select(ctx context.Context, table string, where sq.Eq) ([]models.Row, error)

	// WithinTx runs fn against a store whose writes are committed together.
	// Nested calls join the enclosing transaction.
	WithinTx(ctx context.Context, fn func(RowStore) error) error
}
