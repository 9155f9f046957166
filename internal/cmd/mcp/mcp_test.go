package mcp

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/spf13/pflag"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("mcp", pflag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, map[string]string{})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.Host != "0.0.0.0" || cfg.Port != 8000 {
		t.Fatalf("expected default bind 0.0.0.0:8000, got %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("expected default http timeout 30s, got %v", cfg.HTTPTimeout)
	}
	if cfg.APIKey != "" {
		t.Fatalf("expected no api key, got %q", cfg.APIKey)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := pflag.NewFlagSet("mcp", pflag.ContinueOnError)
	environ := map[string]string{
		"VIKUNJA_URL":            "https://tasks.example.com/",
		"VIKUNJA_TOKEN":          "tk",
		"MCP_API_KEY":            "secret",
		"VIKUNJA_MCP_CONFIG_DIR": "/srv/vikunja-mcp",
		"VIKUNJA_MCP_TRANSPORT":  "sse",
		"VIKUNJA_MCP_PORT":       "9000",
	}
	args := []string{"--port", "9100", "--host", "127.0.0.1"}
	cfg, err := ParseConfig(fs, args, environ)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "sse" {
		t.Fatalf("expected env transport sse, got %q", cfg.Transport)
	}
	if cfg.Port != 9100 || cfg.Host != "127.0.0.1" {
		t.Fatalf("expected flags to win, got %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.APIKey != "secret" || cfg.VikunjaToken != "tk" {
		t.Fatalf("unexpected credentials: %+v", cfg)
	}
	if cfg.configDir() != "/srv/vikunja-mcp" {
		t.Fatalf("unexpected config dir %q", cfg.configDir())
	}
}

func TestParseConfigRejectsBadPort(t *testing.T) {
	fs := pflag.NewFlagSet("mcp", pflag.ContinueOnError)
	if _, err := ParseConfig(fs, nil, map[string]string{"VIKUNJA_MCP_PORT": "eighty"}); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestConfigDirDefaultsToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got, want := (Config{}).configDir(), filepath.Join(home, ".vikunja-mcp"); got != want {
		t.Fatalf("configDir() = %q, want %q", got, want)
	}
}

func TestRunRequiresVikunjaCredentials(t *testing.T) {
	var logs bytes.Buffer
	err := run(context.Background(), Config{Transport: "stdio"}, &logs)
	if !errors.Is(err, vikunja.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err.Error() != "VIKUNJA_URL and VIKUNJA_TOKEN must be set" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	t.Setenv("VIKUNJA_MCP_OTEL_ENDPOINT", "")
	var logs bytes.Buffer
	err := run(context.Background(), Config{
		VikunjaURL:   "https://tasks.example.com",
		VikunjaToken: "tk",
		ConfigDir:    t.TempDir(),
		Transport:    "carrier-pigeon",
	}, &logs)
	if err == nil || err.Error() != `transport "carrier-pigeon" is not supported` {
		t.Fatalf("expected unsupported transport error, got %v", err)
	}
}
