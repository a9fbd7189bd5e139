package main

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/reclaim/internal/config"
	"github.com/stwalsh4118/reclaim/internal/database"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/mapping"
	"github.com/stwalsh4118/reclaim/internal/repository"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return cfg, nil
}

// loadMapper reads the mapping tables from path, or the embedded tables when path is empty.
func loadMapper(path string) (*mapping.Mapper, error) {
	if path == "" {
		return mapping.Default()
	}
	tables, err := mapping.LoadTables(path)
	if err != nil {
		return nil, err
	}
	return mapping.NewMapper(tables)
}

// connect opens the target database after validating its settings.
func connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*database.Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("database configuration: %w", err))
	}
	db, err := database.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.Name,
		"pool_max": cfg.PoolMax,
	})
	return db, nil
}

// openStore returns the target store: in memory for a dry run, Postgres otherwise.
func openStore(ctx context.Context, cfg config.DatabaseConfig, dryRun, migrate bool, log *logger.Logger) (repository.RowStore, func(), error) {
	if dryRun {
		log.Info("Dry run, writing to memory", nil)
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := connect(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return repository.NewRowStore(db), db.Close, nil
}
