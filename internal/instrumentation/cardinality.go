package instrumentation

import (
	"strconv"
	"strings"
)

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with peer or user identifiers.

// PeerKind classifies a chat identifier into a bounded label value.
// This reduces cardinality by using the identifier shape instead of the
// identifier itself.
//
// Example:
//
//	PeerKind("@golang")          // "username"
//	PeerKind("133713371337")     // "user"
//	PeerKind("-4001234500000")   // "chat"
//	PeerKind("")                 // "unknown"
//	PeerKind("not a peer")       // "unknown"
func PeerKind(chatID string) string {
	if chatID == "" {
		return "unknown"
	}

	if strings.HasPrefix(chatID, "@") {
		return "username"
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "unknown"
	}
	if id < 0 {
		return "chat"
	}
	return "user"
}

// Common operation types for Telegram API metrics.
// Status, connection result, and service constants are defined in config.go.
const (
	OperationList    = "list"
	OperationGet     = "get"
	OperationSend    = "send"
	OperationSearch  = "search"
	OperationConnect = "connect"
	OperationResolve = "resolve"
	OperationUpdates = "updates"
)
