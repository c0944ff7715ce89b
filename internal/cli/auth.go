package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/basher83/zammad-mcp/internal/config"
	"github.com/basher83/zammad-mcp/internal/output"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
		Long:  "Store or remove the Zammad API token in the system keyring. A stored token is used when no credential is set in the environment.",
	}
	cmd.AddCommand(newAuthSetTokenCmd())
	cmd.AddCommand(newAuthClearCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token [token]",
		Short: "Store an API token in the system keyring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(cmd.OutOrStdout(), "Token: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil {
					return output.ErrConfig("reading token from stdin failed")
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return output.ErrConfig("token is empty")
			}
			if err := keyring.Set(config.KeyringService, config.KeyringUser, token); err != nil {
				return output.ErrConfigHint("storing the token failed: "+err.Error(),
					"the system keyring may be unavailable; use ZAMMAD_HTTP_TOKEN instead")
			}
			cmd.Println("Token stored in the system keyring.")
			return nil
		},
	}
}

func newAuthClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := keyring.Delete(config.KeyringService, config.KeyringUser)
			if err != nil && err != keyring.ErrNotFound {
				return output.ErrConfig("removing the token failed: " + err.Error())
			}
			cmd.Println("Stored token removed.")
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credential source is active",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			switch {
			case cfg.HTTPToken != "":
				cmd.Printf("Using API token (source: %s)\n", cfg.Sources["http_token"])
			case cfg.OAuth2Token != "":
				cmd.Println("Using OAuth2 token from the environment")
			case cfg.Username != "":
				cmd.Printf("Using username/password for %s\n", cfg.Username)
			}
			cmd.Printf("Zammad URL: %s\n", cfg.URL)
			return nil
		},
	}
}
