// Package mcp exposes recipe search to assistant hosts over the Model
// Context Protocol on stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/version"
)

// ServerName identifies this MCP server to connected hosts.
const ServerName = "recipedex"

// Server wraps the MCP stdio server around the search stack.
type Server struct {
	mcp      *server.MCPServer
	searcher Searcher
	recipes  RecipeGetter
	indexer  Rebuilder
	logger   *zap.Logger
}

// NewServer creates an MCP server with the three recipe tools registered.
func NewServer(searcher Searcher, recipes RecipeGetter, indexer Rebuilder, logger *zap.Logger) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, version.Version),
		searcher: searcher,
		recipes:  recipes,
		indexer:  indexer,
		logger:   logger,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchRecipesTool(), s.handleSearchRecipes)
	s.mcp.AddTool(getRecipeTool(), s.handleGetRecipe)
	s.mcp.AddTool(rebuildIndexTool(), s.handleRebuildIndex)
}

// Serve runs the server on stdio and blocks until the host disconnects.
func (s *Server) Serve(_ context.Context) error {
	s.logger.Info("Starting MCP server on stdio", zap.String("name", ServerName))
	return server.ServeStdio(s.mcp)
}
