package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh expiring access tokens once and exit",
	Long: "Runs a single batch refresh of active connections whose access tokens " +
		"expire within the configured lookahead, then prints the report as JSON.",
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.engine.RefreshExpiringTokens(cmd.Context())
	if err != nil {
		return fmt.Errorf("refreshing tokens: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
