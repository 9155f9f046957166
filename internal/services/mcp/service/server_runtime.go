package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/vikunja-mcp/internal/platform/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Run builds the server from cfg and serves it on the configured transport
// until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}

	switch cfg.Transport {
	case TransportStdio, TransportSSE:
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := New(cfg.Services, cfg.Logger)
	if err != nil {
		return err
	}
	if cfg.Transport == TransportSSE {
		return runWithSSETransport(ctx, server, cfg)
	}
	cfg.Logger.Info("serving MCP over stdio")
	return server.Serve(ctx)
}

// runWithSSETransport serves the MCP server over HTTP/SSE, keeping the API key
// guard and health endpoint in front of the same tool handlers used by stdio.
func runWithSSETransport(ctx context.Context, server *Server, cfg Config) error {
	transport := NewHTTPTransport(cfg.httpAddr(), cfg.APIKey, server, cfg.Logger)
	return transport.Start(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
