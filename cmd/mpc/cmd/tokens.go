package cmd

import (
	"github.com/spf13/cobra"
)

func tokensCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tokens",
		Short: "Operate on stored access tokens",
	}
	root.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Refresh every access token close to expiry",
		Example: `  mpc tokens refresh
  mpc tokens refresh --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := newClient().RefreshTokens(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), report)
			}
			return printRefreshReport(cmd.OutOrStdout(), report)
		},
	})
	return root
}
