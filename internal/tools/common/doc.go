// Package common provides shared helpers for MCP tool handlers: argument
// extraction and instrumentation wrappers that record metrics and audit
// events around handler execution.
package common
