package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stwalsh4118/reclaim/internal/database"
	"github.com/stwalsh4118/reclaim/internal/models"
)

// Querier is satisfied by both the connection pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresStore is the PostgreSQL implementation of RowStore.
type postgresStore struct {
	db *database.Database
	q  Querier
	tx pgx.Tx
}

// NewRowStore creates a RowStore on top of the connection pool.
func NewRowStore(db *database.Database) RowStore {
	return &postgresStore{db: db, q: db.Pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (s *postgresStore) Exists(ctx context.Context, table string, where sq.Eq) (bool, error) {
	query, args, err := psql.Select("1").From(table).Where(where).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query for %s: %w", table, err)
	}

	var one int
	if err := s.q.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s for %v: %w", table, where, err)
	}
	return true, nil
}

func (s *postgresStore) Insert(ctx context.Context, table string, row models.Row) error {
	query, args, err := psql.Insert(table).SetMap(row).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert for %s: %w", table, err)
	}
	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (s *postgresStore) Select(ctx context.Context, table string, where sq.Eq) ([]models.Row, error) {
	query, args, err := psql.Select("*").From(table).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select for %s: %w", table, err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", table, err)
	}

	result := make([]models.Row, 0, len(maps))
	for _, m := range maps {
		result = append(result, models.Row(m))
	}
	return result, nil
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(RowStore) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.db.Pool, func(tx pgx.Tx) error {
		return fn(&postgresStore{db: s.db, q: tx, tx: tx})
	})
}
