// Package mcp parses MCP command flags and selects stdio or SSE transport.
package mcp

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/louisbranch/vikunja-mcp/internal/platform/config"
	"github.com/louisbranch/vikunja-mcp/internal/platform/logging"
	"github.com/louisbranch/vikunja-mcp/internal/platform/otel"
	"github.com/louisbranch/vikunja-mcp/internal/platform/timeouts"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/domain"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/service"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/spf13/pflag"
)

// Config holds MCP command configuration.
type Config struct {
	VikunjaURL   string `env:"VIKUNJA_URL"`
	VikunjaToken string `env:"VIKUNJA_TOKEN"`
	APIKey       string `env:"MCP_API_KEY"`
	// ConfigDir defaults to ~/.vikunja-mcp when empty.
	ConfigDir   string        `env:"VIKUNJA_MCP_CONFIG_DIR"`
	Transport   string        `env:"VIKUNJA_MCP_TRANSPORT"    envDefault:"stdio"`
	Host        string        `env:"VIKUNJA_MCP_HOST"         envDefault:"0.0.0.0"`
	Port        int           `env:"VIKUNJA_MCP_PORT"         envDefault:"8000"`
	LogLevel    string        `env:"VIKUNJA_MCP_LOG_LEVEL"    envDefault:"info"`
	LogFormat   string        `env:"VIKUNJA_MCP_LOG_FORMAT"   envDefault:"text"`
	HTTPTimeout time.Duration `env:"VIKUNJA_MCP_HTTP_TIMEOUT" envDefault:"30s"`
	// CallTimeout caps a whole tool call; batch tools issue many requests.
	CallTimeout time.Duration `env:"VIKUNJA_MCP_CALL_TIMEOUT" envDefault:"5m"`
}

// ParseConfig parses environment and flags into a Config. A nil environ
// reads the process environment.
func ParseConfig(fs *pflag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := config.ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or sse")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Port for the SSE transport")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Host for the SSE transport")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) configDir() string {
	if c.ConfigDir != "" {
		return c.ConfigDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vikunja-mcp"
	}
	return filepath.Join(home, ".vikunja-mcp")
}

// Run starts the MCP protocol adapter. Logs go to stderr.
func Run(ctx context.Context, cfg Config) error {
	return run(ctx, cfg, os.Stderr)
}

func run(ctx context.Context, cfg Config, logOutput io.Writer) error {
	logger := logging.New(logOutput, cfg.LogLevel, cfg.LogFormat)

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = timeouts.VikunjaRequest
	}
	client, err := vikunja.New(cfg.VikunjaURL, cfg.VikunjaToken,
		vikunja.WithHTTPClient(&http.Client{Timeout: timeout}),
		vikunja.WithTracer(otel.Tracer()),
	)
	if err != nil {
		return err
	}

	shutdown, err := otel.Setup(ctx, "vikunja-mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.TracingShutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", "error", err)
		}
	}()

	store := projectconfig.NewStore(cfg.configDir())
	logger.Info("starting vikunja MCP server",
		"transport", cfg.Transport,
		"vikunja_url", client.BaseURL(),
		"config_path", store.Path(),
	)

	return service.Run(ctx, service.Config{
		Transport: service.TransportKind(cfg.Transport),
		Host:      cfg.Host,
		Port:      cfg.Port,
		APIKey:    cfg.APIKey,
		Services: &domain.Services{
			Vikunja:     client,
			Configs:     store,
			Logger:      logger,
			CallTimeout: cfg.CallTimeout,
		},
		Logger: logger,
	})
}
