package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	applog "budget/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "budgetctl",
		Short: "Administer the budget backend",
		Long: `budgetctl runs schema migrations, inspects an owner's ledger and
re-exports transactions to the configured spreadsheet.

Configuration is read from the same environment as the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.LoadEnvFile()
		},
	}
	root.AddCommand(newMigrateCmd(), newSummaryCmd(), newCategoriesCmd(), newResyncCmd())
	return root
}

// loadBackendConfig reads storage settings only; auth settings are not
// needed for offline administration.
func loadBackendConfig() (backend.Config, error) {
	return backend.FromAppConfig(config.Load())
}

func openBackend(ctx context.Context, cfg backend.Config) (*backend.BackendResult, error) {
	cfg.AMQPURL = ""
	logger := cli.SetupLogger(applog.ComponentBackend)
	return backend.NewFactory(logger.Logger).CreateBackend(ctx, cfg)
}
