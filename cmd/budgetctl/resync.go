package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/worker"
)

func newResyncCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Export all of an owner's transactions to the spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			cfg, err := loadBackendConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			result, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer result.Cleanup()

			exporter, err := backend.NewExporter(ctx, cfg, nil)
			if err != nil {
				return err
			}
			n, err := worker.NewSyncWorker(result.Store, exporter).ResyncOwner(ctx, user)
			if err != nil {
				return fmt.Errorf("resync after %d rows: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d transactions for %s\n", n, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner id")
	return cmd
}
