package vikunja

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// apiPrefix is prepended to every route.
const apiPrefix = "/api/v1"

// RequestIDHeader carries the MCP invocation id to Vikunja for log correlation.
const RequestIDHeader = "X-Request-Id"

// ErrNotConfigured is returned when the base URL or token is missing.
var ErrNotConfigured = errors.New("VIKUNJA_URL and VIKUNJA_TOKEN must be set")

// APIError is a non-2xx response from Vikunja. The body is kept verbatim.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "Authentication failed: " + e.Body
	case http.StatusNotFound:
		return "Resource not found: " + e.Body
	default:
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
	}
}

// IsNotFound reports whether err wraps a 404 from Vikunja.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err wraps a 401 from Vikunja.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to the Vikunja REST API with a single bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTracer sets the tracer used for per-request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New creates a client for the Vikunja instance at baseURL.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	token = strings.TrimSpace(token)
	if baseURL == "" || token == "" {
		return nil, ErrNotConfigured
	}
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: http.DefaultClient,
		tracer:     noop.NewTracerProvider().Tracer("vikunja"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestIDKey struct{}

// WithRequestID attaches a request id that will be sent to Vikunja.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// expand fills {placeholders} in route with ids, left to right.
func expand(route string, ids ...int64) string {
	var b strings.Builder
	next := 0
	for i := 0; i < len(route); i++ {
		if route[i] != '{' {
			b.WriteByte(route[i])
			continue
		}
		end := strings.IndexByte(route[i:], '}')
		if end < 0 || next >= len(ids) {
			b.WriteString(route[i:])
			break
		}
		b.WriteString(strconv.FormatInt(ids[next], 10))
		next++
		i += end
	}
	return b.String()
}

// do sends one request. route is the templated path used as span name; ids
// fill its placeholders. A nil out skips decoding, as does DELETE.
func (c *Client) do(ctx context.Context, method, route string, ids []int64, body, out any) error {
	path := apiPrefix + expand(route, ids...)

	ctx, span := c.tracer.Start(ctx, "vikunja "+method+" "+route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode body")
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestIDFrom(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("vikunja %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(raw)}
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return apiErr
	}

	if method == http.MethodDelete || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode response")
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
