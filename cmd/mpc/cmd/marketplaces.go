package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

func marketplacesCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "marketplaces",
		Aliases: []string{"mp"},
		Short:   "Manage a user's marketplace connections",
	}

	root.AddCommand(
		marketplacesListCmd(),
		marketplacesStatusCmd(),
		marketplacesAuthorizeCmd(),
		marketplacesLinkCmd("link", true),
		marketplacesLinkCmd("unlink", false),
		marketplacesSetStatusCmd(),
	)

	return root
}

func marketplacesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List marketplaces and connection status",
		Example: `  mpc marketplaces list --user u-123
  mpc marketplaces list --user u-123 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := userID()
			if err != nil {
				return err
			}
			views, err := newClient().ListMarketplaces(cmd.Context(), uid)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No marketplaces configured.")
				return nil
			}
			return printMarketplacesTable(cmd.OutOrStdout(), views)
		},
	}
}

func marketplacesStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status <slug>",
		Short:   "Show connection and token status for one marketplace",
		Args:    cobra.ExactArgs(1),
		Example: `  mpc marketplaces status ebay --user u-123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := userID()
			if err != nil {
				return err
			}
			st, err := newClient().GetMarketplaceStatus(cmd.Context(), uid, args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), st)
			}
			return printMarketplaceStatus(cmd.OutOrStdout(), st)
		},
	}
}

func marketplacesAuthorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authorize <slug>",
		Short: "Print a provider consent URL",
		Long: "Requests a fresh authorization URL. Open it in a browser to grant access;\n" +
			"the URL is single-use and expires after the state TTL.",
		Args:    cobra.ExactArgs(1),
		Example: `  mpc marketplaces authorize facebook --user u-123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := userID()
			if err != nil {
				return err
			}
			u, err := newClient().AuthorizationURL(cmd.Context(), uid, args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"oauth_url": u})
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func marketplacesLinkCmd(use string, link bool) *cobra.Command {
	short := "Start linking a marketplace"
	if !link {
		short = "Unlink a marketplace and clear its tokens"
	}
	return &cobra.Command{
		Use:     use + " <marketplace-id>",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		Example: fmt.Sprintf("  mpc marketplaces %s 1 --user u-123", use),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := userID()
			if err != nil {
				return err
			}
			id, err := parseMarketplaceID(args[0])
			if err != nil {
				return err
			}
			res, err := newClient().LinkMarketplace(cmd.Context(), uid, id, link)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Marketplace.Name, res.Status)
			if res.AuthorizationURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Authorize at: %s\n", res.AuthorizationURL)
			}
			return nil
		},
	}
}

func marketplacesSetStatusCmd() *cobra.Command {
	var message string
	c := &cobra.Command{
		Use:   "set-status <marketplace-id> <status>",
		Short: "Set a connection status directly",
		Long: "Sets the stored status (disconnected, pending, active). Setting active\n" +
			"requires the connection to already hold an access token.",
		Args:    cobra.ExactArgs(2),
		Example: `  mpc marketplaces set-status 2 disconnected --error "Revoked by support" --user u-123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := userID()
			if err != nil {
				return err
			}
			id, err := parseMarketplaceID(args[0])
			if err != nil {
				return err
			}
			status := domain.ConnectionStatus(args[1])
			if !status.Persistable() {
				return fmt.Errorf("invalid status %q: want disconnected, pending, or active", args[1])
			}
			if err := newClient().SetStatus(cmd.Context(), uid, id, status, message); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marketplace %d set to %s.\n", id, status)
			return nil
		},
	}
	c.Flags().StringVar(&message, "error", "", "error message to record")
	return c
}

func parseMarketplaceID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid marketplace id %q", s)
	}
	return id, nil
}
