package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// sqliteTimeLayout matches the way the export stores date columns.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteSource reads the legacy export converted to a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens the export at path read-only.
func OpenSQLite(path string) (*SQLiteSource, error) {
	dsn := "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy export: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open legacy export %s: %w", path, err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Select(ctx context.Context, q Query) ([]Record, error) {
	query, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", q.Table, err)
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", q.Table, err)
		}

		raw := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			raw[column] = values[i]
		}
		records = append(records, NewRecord(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", q.Table, err)
	}
	return records, nil
}

func buildSelect(q Query) (string, []interface{}, error) {
	builder := sq.Select("*").From(quoteIdent(q.Table)).PlaceholderFormat(sq.Question)
	for _, p := range q.Where {
		column := quoteIdent(p.Column)
		switch p.op {
		case opAfter:
			builder = builder.Where(sq.Gt{column: bindValue(p.Value)})
		default:
			builder = builder.Where(sq.Eq{column: bindValue(p.Value)})
		}
	}
	for _, column := range q.OrderBy {
		builder = builder.OrderBy(quoteIdent(column))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query for %s: %w", q.Table, err)
	}
	return query, args, nil
}

func bindValue(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.Format(sqliteTimeLayout)
	}
	return v
}

// quoteIdent quotes a table or column name; legacy names contain spaces.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
