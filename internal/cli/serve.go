package cli

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/basher83/zammad-mcp/internal/api"
	"github.com/basher83/zammad-mcp/internal/config"
	"github.com/basher83/zammad-mcp/internal/server"
	"github.com/basher83/zammad-mcp/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg)
	slog.Info("starting zammad-mcp",
		"version", version.Version,
		"url", cfg.URL,
		"transport", cfg.Transport,
		"character_limit", cfg.CharacterLimit)

	return server.New(cfg, client).Run(ctx)
}
