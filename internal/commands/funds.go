package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mfdist/internal/core"
)

func newFundsCommand(catalog *core.Catalog) *cobra.Command {
	fundsCmd := &cobra.Command{
		Use:   "funds",
		Short: "Inspect the fund catalog",
	}
	fundsCmd.AddCommand(newFundsListCommand(catalog), newFundsFilterCommand(catalog))
	return fundsCmd
}

func newFundsListCommand(catalog *core.Catalog) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every fund with its historical returns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeFunds(cmd.OutOrStdout(), catalog.Funds())
		},
	}
}

func newFundsFilterCommand(catalog *core.Catalog) *cobra.Command {
	var category string
	var minReturn float64

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List funds of a category whose 1 year return meets a floor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := core.FilterCriteria{Category: category, MinReturn1Y: minReturn}
			if err := core.ValidateCriteria(catalog, criteria); err != nil {
				return fmt.Errorf("filter %q: %w", category, err)
			}
			funds := catalog.Filter(criteria)
			if len(funds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No funds match the selected criteria.")
				return nil
			}
			return writeFunds(cmd.OutOrStdout(), funds)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "fund category (Equity, Debt, Hybrid)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().Float64Var(&minReturn, "min-return", 5, "minimum 1 year return in percent")

	return cmd
}

func writeFunds(out io.Writer, funds []core.FundRecord) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\t1Y\t3Y\t5Y")
	for _, f := range funds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Name, f.Category,
			core.FormatPercent(f.Return1Y), core.FormatPercent(f.Return3Y), core.FormatPercent(f.Return5Y))
	}
	return tw.Flush()
}
