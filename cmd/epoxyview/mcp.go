package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/config"
	"github.com/skisplace/epoxyview/internal/logger"
	"github.com/skisplace/epoxyview/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve preview tools over MCP stdio",
	Long: `Serve preview tools over MCP stdio.

Exposes list_styles, upload_image, and render_preview as MCP tools so an
agent can drive the preview service headlessly. Connect an MCP client to
this process's stdin/stdout.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	configureLogging(cfg)

	client := api.NewClient(cfg.APIBase, cfg.APIKey)
	srv := mcpserver.New(client, cfg.ProjectID, cfg.Debug)

	logger.Info("mcp server on stdio (api=%s)", cfg.APIBase)
	return srv.ServeStdio()
}
