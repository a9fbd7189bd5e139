package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stwalsh4118/reclaim/internal/config"
)

// Pool tuning for the import workload: one writer, short-lived runs.
const (
	connectTimeout    = 5 * time.Second
	maxConnIdleTime   = 30 * time.Second
	maxConnLifetime   = time.Hour
	healthCheckPeriod = time.Minute
)

// Database holds the pgx pool of the target store.
type Database struct {
	Pool *pgxpool.Pool
}

// NewPostgresPool validates cfg, opens a pgx connection pool for the target
// store and checks it with a ping.
func NewPostgresPool(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MinConns = int32(cfg.PoolMin)
	poolConfig.MaxConns = int32(cfg.PoolMax)
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach %s on %s: %w", cfg.Name, net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	return &Database{Pool: pool}, nil
}

// DSN builds the connection URL for cfg. Credentials are escaped.
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// Ping reports whether the target database is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close releases the pool. Safe on a Database without a pool.
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Stats returns pool statistics, or nil without a pool.
func (db *Database) Stats() *pgxpool.Stat {
	if db.Pool == nil {
		return nil
	}
	return db.Pool.Stat()
}
