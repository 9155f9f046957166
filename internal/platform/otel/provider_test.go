package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/vikunja-mcp/internal/platform/otel"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv(otel.EndpointEnv, "")
	t.Setenv(otel.EnabledEnv, "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv(otel.EndpointEnv, "http://localhost:4318")
	t.Setenv(otel.EnabledEnv, "false")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no export actually happens.
	t.Setenv(otel.EndpointEnv, "http://192.0.2.1:4318")
	t.Setenv(otel.EnabledEnv, "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestTracerStartsSpans(t *testing.T) {
	_, span := otel.Tracer().Start(context.Background(), "probe")
	defer span.End()
	if span == nil {
		t.Fatal("expected span")
	}
}
