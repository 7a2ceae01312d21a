// Package mcp exposes translation extraction and checks as MCP tools over
// stdio.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mattermost/mmjstool/pkg/i18n"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for mmjstool.
type Server struct {
	mcpServer *server.MCPServer
	tool      *i18n.Tool
	targets   i18n.Targets
	logger    *slog.Logger
}

// NewServer creates an MCP server running operations with tool against
// targets. Every tool call is logged to logger.
func NewServer(tool *i18n.Tool, targets i18n.Targets, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{tool: tool, targets: targets, logger: logger}

	s.mcpServer = server.NewMCPServer(
		"mmjstool",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware()),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: extractTranslationsTool(), Handler: s.handleExtractTranslations},
		server.ServerTool{Tool: checkTranslationsTool(), Handler: s.handleCheckTranslations},
		server.ServerTool{Tool: findEmptyTranslationsTool(), Handler: s.handleFindEmptyTranslations},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
