// Package timeouts defines shared timeout constants.
package timeouts

import "time"

// VikunjaRequest is the default cap for a single Vikunja REST call.
const VikunjaRequest = 30 * time.Second

// ReadHeader limits how long the SSE server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the SSE server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TracingShutdown bounds the final span flush on process exit.
const TracingShutdown = 5 * time.Second
