package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mfdist/internal/core"
)

func newProjectCommand(catalog *core.Catalog) *cobra.Command {
	var fund string
	var amount string
	var years int

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the value of an investment in a fund",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := catalog.Lookup(fund)
			if err != nil {
				return err
			}
			principal, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			projected, err := core.Project(core.ProjectionRequest{
				Fund:         &record,
				Principal:    principal,
				HorizonYears: years,
			})
			if err != nil {
				return err
			}
			rate, _ := record.RateFor(years)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s for %d year(s) at %s -> %s\n",
				record.Name, core.FormatRupees(principal), years, core.FormatPercent(rate), core.FormatRupees(projected))
			return nil
		},
	}

	cmd.Flags().StringVar(&fund, "fund", "", "fund name as listed by 'funds list'")
	_ = cmd.MarkFlagRequired("fund")
	cmd.Flags().StringVar(&amount, "amount", "1000", "amount invested in rupees")
	cmd.Flags().IntVar(&years, "years", 1, "investment horizon: 1, 3 or 5")

	return cmd
}
