package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/timeclock/internal/pkg/config"
	"github.com/99minutos/timeclock/pkg/logger"
)

// newMigrateCmd prepares the configured store: indexes on MongoDB, schema on
// SQLite. serve does the same on start, so this is for deploy pipelines.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the store schema and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWith(cmd.Context(), envLookuper())
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  cfg.IsDevelopment(),
				Service: "timeclock",
				Version: version,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			st, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			log.Info().Str("driver", cfg.StoreDriver).Msg("store migrated")
			return nil
		},
	}
}
