// Package service wires protocol transport to domain services.
//
// It is the transport adapter layer: the package knows how to run MCP over stdio
// or HTTP/SSE, guards the HTTP surface with an optional API key, and delegates
// tool semantics to handlers in the domain package.
package service
