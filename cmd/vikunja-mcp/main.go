package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/louisbranch/vikunja-mcp/internal/cmd/mcp"
	"github.com/louisbranch/vikunja-mcp/internal/platform/config"
	"github.com/spf13/pflag"
)

// main starts the MCP server on stdio or SSE.
func main() {
	cfg, err := mcpcmd.ParseConfig(pflag.CommandLine, os.Args[1:], nil)
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := mcpcmd.Run(ctx, cfg); err != nil {
		stop()
		config.Exitf("failed to serve MCP: %v", err)
	}
	stop()
}
