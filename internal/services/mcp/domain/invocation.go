package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/vikunja-mcp/internal/platform/timeouts"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InvocationIDMeta is the result metadata key carrying the invocation id.
const InvocationIDMeta = "invocation_id"

// Services bundles the backends tool handlers call.
type Services struct {
	Vikunja *vikunja.Client
	Configs *projectconfig.Store
	Logger  *slog.Logger
	// CallTimeout caps a whole tool call. Zero uses timeouts.VikunjaRequest.
	CallTimeout time.Duration
	// Now is overridable in tests.
	Now func() time.Time
}

func (s *Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Services) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Services) callTimeout() time.Duration {
	if s.CallTimeout > 0 {
		return s.CallTimeout
	}
	return timeouts.VikunjaRequest
}

// toolInvocationContext scopes one tool call.
type toolInvocationContext struct {
	RunCtx       context.Context
	Cancel       context.CancelFunc
	InvocationID string
}

func (s *Services) newToolInvocationContext(ctx context.Context) toolInvocationContext {
	invocationID := uuid.NewString()
	runCtx, cancel := context.WithTimeout(ctx, s.callTimeout())
	runCtx = vikunja.WithRequestID(runCtx, invocationID)
	return toolInvocationContext{RunCtx: runCtx, Cancel: cancel, InvocationID: invocationID}
}

// CallToolResultWithMetadata builds a tool result carrying the invocation id.
// The SDK fills content from the typed output.
func CallToolResultWithMetadata(invocationID string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Meta: map[string]any{InvocationIDMeta: invocationID},
	}
}

type toolFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// instrument adapts fn into an MCP handler with an invocation id, a call
// timeout and one log record per call.
func instrument[In, Out any](svc *Services, name string, fn toolFunc[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		call := svc.newToolInvocationContext(ctx)
		defer call.Cancel()

		start := svc.now()
		out, err := fn(call.RunCtx, input)
		logger := svc.logger().With(
			slog.String("tool", name),
			slog.String("invocation_id", call.InvocationID),
			slog.Duration("duration", svc.now().Sub(start)),
		)
		if err != nil {
			logger.Warn("tool call failed", slog.Any("error", err))
			var zero Out
			return nil, zero, err
		}
		logger.Debug("tool call completed")
		return CallToolResultWithMetadata(call.InvocationID), out, nil
	}
}
