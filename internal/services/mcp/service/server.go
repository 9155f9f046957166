package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/louisbranch/vikunja-mcp/internal/platform/logging"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName = "vikunja"
	// serverVersion identifies the MCP server version.
	serverVersion      = "0.1.0"
	serverInstructions = "Manage tasks, projects, labels, and kanban boards in Vikunja"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportSSE runs MCP over HTTP with server-sent events for remote clients.
	TransportSSE TransportKind = "sse"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	Host      string
	Port      int
	// APIKey guards every SSE route except /health. Empty disables the check.
	APIKey   string
	Services *domain.Services
	Logger   *slog.Logger
}

func (c Config) httpAddr() string {
	host := c.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.Port
	if port == 0 {
		port = 8000
	}
	return host + ":" + strconv.Itoa(port)
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	logger    *slog.Logger
}

// New creates an MCP server with every Vikunja tool module registered against
// the given services.
func New(services *domain.Services, logger *slog.Logger) (*Server, error) {
	if services == nil {
		return nil, errors.New("domain services are required")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		Instructions: serverInstructions,
	})

	for _, module := range newMCPRegistrationModules(services) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
		logger.Debug("registered MCP module", "module", module.name)
	}

	return &Server{mcpServer: mcpServer, logger: logger}, nil
}
