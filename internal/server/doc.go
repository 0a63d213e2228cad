// Package server holds the runtime state shared by all MCP tools.
//
// ServerContext owns the process-wide connection handles: at most one live
// Telegram user-account client and one lazily created Bot API client.
// Replacing the live user-account client closes the previous one so a
// reconnect never leaks a connection. The package also provides the
// dedicated Prometheus metrics server and the health check endpoints used
// by the streamable-http transport.
package server
