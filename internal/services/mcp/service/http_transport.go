package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/louisbranch/vikunja-mcp/internal/platform/logging"
	"github.com/louisbranch/vikunja-mcp/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

var listenTCP = net.Listen

const (
	ssePath    = "/sse"
	healthPath = "/health"
)

// HTTPTransport serves one MCP server over HTTP with server-sent events.
// GET /sse opens a session stream and announces the POST endpoint for that
// session; /health reports liveness without authentication.
type HTTPTransport struct {
	addr       string
	apiKey     string
	server     *Server
	logger     *slog.Logger
	httpServer *http.Server
}

// NewHTTPTransport creates an SSE transport bound to addr. An empty apiKey
// leaves every route open.
func NewHTTPTransport(addr, apiKey string, server *Server, logger *slog.Logger) *HTTPTransport {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPTransport{
		addr:   addr,
		apiKey: apiKey,
		server: server,
		logger: logger,
	}
}

// Handler returns the routed, API-key guarded HTTP handler.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	sse := mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return t.server.mcpServer
	}, nil)
	mux.Handle(ssePath, sse)
	mux.HandleFunc(healthPath, t.handleHealth)
	return requireAPIKey(t.apiKey, t.logger, mux)
}

// Start listens on the configured address and serves until ctx ends, then
// shuts down gracefully.
func (t *HTTPTransport) Start(ctx context.Context) error {
	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}

	// Open SSE streams only end when their request context does, so they
	// hang off a context that is canceled before Shutdown.
	streamCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	t.httpServer = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
	}

	t.logger.Info("starting MCP SSE server", "addr", listener.Addr().String(), "auth", t.apiKey != "")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := t.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		t.logger.Info("shutting down MCP SSE server")
		cancelStreams()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	})
	return group.Wait()
}
