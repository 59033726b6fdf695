package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/config"
	logpkg "github.com/umami-labs/recipedex/internal/logger"
	mcpTransport "github.com/umami-labs/recipedex/internal/transport/mcp"
	"github.com/umami-labs/recipedex/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve recipe search over the Model Context Protocol",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server communicates over stdio using JSON-RPC and exposes the
search_recipes, get_recipe and rebuild_index tools. Logs go to stderr so
stdout stays clean for the protocol.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "recipedex": {
        "command": "/path/to/recipedex",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
	Args: cobra.NoArgs,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recipedex MCP server",
		zap.String("version", version.Version),
		zap.String("env", env),
	)

	ctx := cmd.Context()
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.buildIndex(ctx); err != nil {
		return err
	}
	app.indexer.Start()

	srv := mcpTransport.NewServer(app.searcher, app.recipes, app.indexer, logger)
	return srv.Serve(ctx)
}
