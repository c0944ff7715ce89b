// Package cli wires the command tree: serving MCP is the default
// action, with auxiliary commands for credentials and debugging.
package cli

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/basher83/zammad-mcp/internal/config"
	"github.com/basher83/zammad-mcp/internal/version"
)

// NewRootCmd creates the root cobra command. Running without a
// subcommand starts the MCP server, which is what MCP clients invoke.
func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "zammad-mcp",
		Short:         "MCP server for Zammad",
		Long:          "zammad-mcp exposes a Zammad helpdesk instance to MCP clients: ticket search and editing, users, organizations, tags, attachments and queue statistics.",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				os.Setenv("LOG_LEVEL", logLevel)
			}
			setupLogging(logLevel)
			return nil
		},
	}

	// Accept underscore spellings like --log_level, matching the env names.
	cmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warning, error)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setupLogging configures slog with a tinted handler on stderr.
// Stdout stays clean for the stdio transport.
func setupLogging(level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	cfg := config.Config{LogLevel: level}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.TimeOnly,
	})
	slog.SetDefault(slog.New(handler))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.Full())
		},
	}
}
