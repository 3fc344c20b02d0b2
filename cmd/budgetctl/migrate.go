package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/storage/postgres"
	"budget/internal/storage/sqlite"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQL schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBackendConfig()
			if err != nil {
				return err
			}
			switch cfg.Type {
			case backend.PostgresBackend:
				err = postgres.RunMigrations(cfg.DatabaseURL)
			case backend.SQLiteBackend:
				err = sqlite.RunMigrations(cfg.SQLiteDBPath)
			default:
				return fmt.Errorf("migrations apply to sql backends only, got %s", cfg.Type)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.Type)
			return nil
		},
	}, &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBackendConfig()
			if err != nil {
				return err
			}
			var (
				version uint
				dirty   bool
			)
			switch cfg.Type {
			case backend.PostgresBackend:
				version, dirty, err = postgres.MigrationVersion(cfg.DatabaseURL)
			case backend.SQLiteBackend:
				version, dirty, err = sqlite.MigrationVersion(cfg.SQLiteDBPath)
			default:
				return fmt.Errorf("migrations apply to sql backends only, got %s", cfg.Type)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})
	return cmd
}
