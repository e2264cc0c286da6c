// Package commands implements the mfdistctl command tree.
package commands

import (
	"github.com/spf13/cobra"

	"mfdist/internal/core"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(core.DefaultCatalog())
}

func newRootCommand(catalog *core.Catalog) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mfdistctl",
		Short: "Mutual fund catalog, projections and lead store tools",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newFundsCommand(catalog),
		newProjectCommand(catalog),
		newChatCommand(),
		newMigrateCommand(),
		newLeadsCommand(),
	)

	return rootCmd
}
