// Package cmd implements the CLI commands for the marketplace connections
// service.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "marketplace-connections",
	Short: "Link user accounts to third-party marketplaces over OAuth2",
	Long: "A service that links user accounts to third-party marketplaces through the " +
		"OAuth2 authorization code flow, stores and refreshes their tokens, and reports " +
		"per-user connection status.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
