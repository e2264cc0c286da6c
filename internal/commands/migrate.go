package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mfdist/internal/storage"
)

func newMigrateCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the lead database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RunMigrations(dbPath); err != nil {
				return fmt.Errorf("migrating %s: %w", dbPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied to %s\n", dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./data/mfdist.db", "SQLite database path")

	return cmd
}
