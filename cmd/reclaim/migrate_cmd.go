package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/reclaim/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the target schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Server.Env)

			db, err := connect(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			version, err := db.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("Schema up to date", map[string]interface{}{"version": version})
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}
