package cmd

import (
	"database/sql"
	"fmt"

	"github.com/pairtrack/pairtrack/internal/config"
	"github.com/pairtrack/pairtrack/internal/db"
	"github.com/pairtrack/pairtrack/internal/logger"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(migrateStep("up", "Apply all pending migrations", db.RunMigrations))
	cmd.AddCommand(migrateStep("down", "Roll back the latest migration", db.MigrateDown))
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			conn, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer conn.Close()

			version, err := db.Version(conn.DB, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, cfg.DBDriver)
			return nil
		},
	})
	return cmd
}

func migrateStep(use, short string, step func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

			conn, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer conn.Close()

			err = step(conn.DB, cfg.DBDriver)
			if err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}

			version, err := db.Version(conn.DB, cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s, schema version %d\n", use, version)
			return nil
		},
	}
}
