package service

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/vikunja-mcp/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, apiKey string) *HTTPTransport {
	t.Helper()
	server, err := New(newTestServices(t, http.StatusOK), nil)
	require.NoError(t, err)
	return NewHTTPTransport("127.0.0.1:0", apiKey, server, nil)
}

func TestHealthIsAlwaysPublic(t *testing.T) {
	for _, apiKey := range []string{"", "secret"} {
		handler := newTestTransport(t, apiKey).Handler()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code, "api key %q", apiKey)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}

func TestHealthRejectsPost(t *testing.T) {
	handler := newTestTransport(t, "").Handler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequireAPIKey(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name   string
		apiKey string
		target string
		header string
		want   int
	}{
		{name: "no key configured", apiKey: "", target: "/sse", want: http.StatusTeapot},
		{name: "bearer match", apiKey: "secret", target: "/sse", header: "Bearer secret", want: http.StatusTeapot},
		{name: "query match", apiKey: "secret", target: "/sse?api_key=secret", want: http.StatusTeapot},
		{name: "missing", apiKey: "secret", target: "/sse", want: http.StatusUnauthorized},
		{name: "wrong bearer", apiKey: "secret", target: "/sse", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", apiKey: "secret", target: "/sse", header: "Basic secret", want: http.StatusUnauthorized},
		{name: "bare token", apiKey: "secret", target: "/sse", header: "secret", want: http.StatusUnauthorized},
		{name: "wrong query", apiKey: "secret", target: "/sse?api_key=nope", want: http.StatusUnauthorized},
		{name: "empty query", apiKey: "secret", target: "/sse?api_key=", want: http.StatusUnauthorized},
		{name: "health bypass", apiKey: "secret", target: "/health", want: http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			requireAPIKey(tt.apiKey, logging.Discard(), next).ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, map[string]string{
					"error":   "unauthorized",
					"message": "Invalid or missing API key",
				}, body)
			}
		})
	}
}

func TestSSEStreamOpensWithKey(t *testing.T) {
	httpServer := httptest.NewServer(newTestTransport(t, "secret").Handler())
	t.Cleanup(httpServer.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpServer.URL+"/sse?api_key=secret", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: endpoint\n", line)
}

func TestSSEStreamRejectsWithoutKey(t *testing.T) {
	httpServer := httptest.NewServer(newTestTransport(t, "secret").Handler())
	t.Cleanup(httpServer.Close)

	resp, err := http.Get(httpServer.URL + "/sse")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStartStopsOnCancel(t *testing.T) {
	transport := newTestTransport(t, "")

	bound := make(chan string, 1)
	listen := listenTCP
	listenTCP = func(network, addr string) (net.Listener, error) {
		listener, err := listen(network, addr)
		if err == nil {
			bound <- listener.Addr().String()
		}
		return listener, err
	}
	t.Cleanup(func() { listenTCP = listen })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- transport.Start(ctx) }()

	var addr string
	select {
	case addr = <-bound:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening")
	}

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
