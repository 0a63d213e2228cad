// Package instrumentation provides OpenTelemetry-based observability for the
// Telegram MCP server: metrics, distributed tracing, and audit logging.
//
// # Metrics
//
// Metrics cover HTTP requests (streamable-http transport), Telegram API
// operations, connection attempts, and MCP tool invocations. The default
// exporter is Prometheus, served by the metrics HTTP server.
//
// # Tracing
//
// Tracing is disabled by default and can be enabled with OTLP or stdout
// exporters via environment variables.
//
// # Audit Logging
//
// Tool invocations are audit-logged through slog. Phone numbers and other
// user identifiers are anonymized unless AUDIT_LOGGING_INCLUDE_PII is set.
//
// # Cardinality
//
// User identifiers and peer IDs are high-cardinality values. Helpers in
// cardinality.go reduce them to bounded label sets before they reach the
// metrics pipeline.
package instrumentation
