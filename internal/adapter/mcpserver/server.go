// Package mcpserver exposes a tool registry over the Model Context Protocol,
// so any MCP-capable host can discover and invoke the Quercle tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"quercle-tools/internal/adapter/tool"
	"quercle-tools/internal/domain"
	"quercle-tools/internal/infra/config"
)

const serverVersion = "1.0.1"

// Server wraps an MCP server configured from a tool registry.
type Server struct {
	mcp    *server.MCPServer
	cfg    config.ServerConfig
	logger *slog.Logger
}

// New builds an MCP server and registers every tool from the registry.
func New(cfg config.ServerConfig, reg *tool.Registry, logger *slog.Logger) *Server {
	srv := server.NewMCPServer(
		"quercle-tools",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, t := range reg.List() {
		schema := t.Schema()
		srv.AddTool(
			mcp.NewToolWithRawSchema(schema.Name, schema.Description, schema.Parameters),
			handler(t),
		)
		logger.Debug("mcp tool registered", "tool", schema.Name)
	}

	return &Server{mcp: srv, cfg: cfg, logger: logger}
}

// handler adapts one domain.Tool to the MCP call contract. Validation errors
// and remote failures both become MCP error results: the host's model sees
// text either way, and the server connection stays up.
func handler(t domain.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return nil, fmt.Errorf("marshal arguments: %w", err)
		}

		result, err := t.Execute(ctx, args)
		if err != nil {
			if domain.IsValidation(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		if result.IsError {
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}

// Serve runs the server on the configured transport until ctx is done
// (sse) or stdin closes (stdio).
func (s *Server) Serve(ctx context.Context) error {
	switch s.cfg.Transport {
	case "sse":
		return s.serveSSE(ctx)
	default:
		s.logger.Info("mcp server listening", "transport", "stdio")
		return server.ServeStdio(s.mcp)
	}
}

func (s *Server) serveSSE(ctx context.Context) error {
	sse := server.NewSSEServer(s.mcp)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening", "transport", "sse", "addr", s.cfg.Addr)
		errCh <- sse.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("mcp server shutdown failed", "error", err)
		}
		return nil
	}
}
