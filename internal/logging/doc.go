// Package logging provides structured logging helpers for telegram-mcp.
//
// The package standardizes slog attribute keys across the codebase and
// offers helpers for values that must never be logged verbatim: phone
// numbers are hashed, session tokens are reduced to a length indicator.
//
// All logging goes to stderr so that the stdio MCP transport on stdout
// stays clean.
package logging
