package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budget/internal/core"
	"budget/internal/services"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the budget categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tICON")
			for _, c := range core.Categories() {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Icon)
			}
			return tw.Flush()
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print an owner's totals and expense breakdown",
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

			txs := services.NewTransactionService(result.Store, nil)
			stats, err := txs.Stats(ctx, user)
			if err != nil {
				return err
			}
			breakdown, err := txs.Breakdown(ctx, user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transactions: %d\n", stats.Count)
			fmt.Fprintf(out, "Income:       %s\n", stats.TotalIncome)
			fmt.Fprintf(out, "Expenses:     %s\n", stats.TotalExpenses)
			fmt.Fprintf(out, "Net balance:  %s\n", stats.NetBalance)
			if len(breakdown.Slices) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
			for _, s := range breakdown.Slices {
				fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", s.Category, s.Amount, s.Percent)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner id")
	return cmd
}
