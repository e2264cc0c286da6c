package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mfdist/internal/core"
	"mfdist/internal/storage"
)

func newLeadsCommand() *cobra.Command {
	leadsCmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect stored leads",
	}
	leadsCmd.AddCommand(newLeadsListCommand())
	leadsCmd.AddCommand(newLeadsRetryCommand())
	return leadsCmd
}

func newLeadsListCommand() *cobra.Command {
	var dbPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent leads and their export status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return fmt.Errorf("opening %s: %w", dbPath, err)
			}
			defer repo.Close()

			items, err := repo.ListLeads(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No leads stored.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "REF\tSUBMITTED\tNAME\tEMAIL\tAMOUNT\tFUND\tEXPORT")
			for _, l := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					l.Ref(), l.Customer.SubmittedAt.Format("2006-01-02 15:04"),
					l.Customer.Name, l.Customer.Email,
					core.FormatRupees(l.Customer.Amount), l.Customer.PreferredFund, l.ExportStatus)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./data/mfdist.db", "SQLite database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of leads to show")

	return cmd
}

func newLeadsRetryCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Queue leads whose export failed permanently for another round of attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return fmt.Errorf("opening %s: %w", dbPath, err)
			}
			defer repo.Close()

			n, err := repo.RetryFailedExports(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d failed lead(s).\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./data/mfdist.db", "SQLite database path")

	return cmd
}
