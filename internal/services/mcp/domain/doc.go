// Package domain translates MCP tool calls into Vikunja REST operations.
//
// Each tool has a schema function (XxxTool) and a handler constructor
// (XxxHandler) returning an mcp.ToolHandlerFor. Handlers share one
// Services value holding the Vikunja client and the project-config store.
// Multi-step tools (batch, bulk, templates) collect per-item failures in an
// errors list instead of failing the whole call.
package domain
