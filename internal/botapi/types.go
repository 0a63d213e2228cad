package botapi

import "fmt"

// Valid parse modes for outgoing messages and captions.
const (
	ParseModeHTML       = "HTML"
	ParseModeMarkdown   = "Markdown"
	ParseModeMarkdownV2 = "MarkdownV2"
)

const (
	// DefaultUpdateLimit is the update count fetched when no limit is given.
	DefaultUpdateLimit = 10

	// MaxUpdateLimit is the Bot API's upper bound for one getUpdates call.
	MaxUpdateLimit = 100
)

// Error wraps a failure of one Bot API operation.
type Error struct {
	// Op is the operation that failed (e.g., "send_message", "get_updates")
	Op string

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("botapi %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// ValidParseMode reports whether mode is empty or one of the supported
// formatting modes.
func ValidParseMode(mode string) bool {
	switch mode {
	case "", ParseModeHTML, ParseModeMarkdown, ParseModeMarkdownV2:
		return true
	}
	return false
}

// ClampUpdateLimit bounds a requested update count to [1, MaxUpdateLimit],
// applying the default for non-positive input.
func ClampUpdateLimit(limit int) int {
	if limit <= 0 {
		return DefaultUpdateLimit
	}
	if limit > MaxUpdateLimit {
		return MaxUpdateLimit
	}
	return limit
}
