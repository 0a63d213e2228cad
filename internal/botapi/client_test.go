package botapi

import (
	"errors"
	"testing"
)

func TestValidParseMode(t *testing.T) {
	tests := []struct {
		mode  string
		valid bool
	}{
		{mode: "", valid: true},
		{mode: "HTML", valid: true},
		{mode: "Markdown", valid: true},
		{mode: "MarkdownV2", valid: true},
		{mode: "html", valid: false},
		{mode: "markdownv2", valid: false},
		{mode: "BBCode", valid: false},
	}

	for _, tt := range tests {
		t.Run("mode "+tt.mode, func(t *testing.T) {
			if got := ValidParseMode(tt.mode); got != tt.valid {
				t.Errorf("ValidParseMode(%q) = %v, want %v", tt.mode, got, tt.valid)
			}
		})
	}
}

func TestClampUpdateLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "zero uses default", input: 0, expected: DefaultUpdateLimit},
		{name: "negative uses default", input: -5, expected: DefaultUpdateLimit},
		{name: "within bounds", input: 25, expected: 25},
		{name: "lower bound", input: 1, expected: 1},
		{name: "upper bound", input: 100, expected: 100},
		{name: "above upper bound", input: 500, expected: MaxUpdateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampUpdateLimit(tt.input); got != tt.expected {
				t.Errorf("ClampUpdateLimit(%d) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseChatID(t *testing.T) {
	id, err := parseChatID(" 12345 ")
	if err != nil {
		t.Fatalf("parseChatID failed: %v", err)
	}
	if id != 12345 {
		t.Errorf("parseChatID = %d, want 12345", id)
	}

	// Negative ids are valid for groups.
	id, err = parseChatID("-1001234567890")
	if err != nil {
		t.Fatalf("parseChatID failed: %v", err)
	}
	if id != -1001234567890 {
		t.Errorf("parseChatID = %d, want -1001234567890", id)
	}

	if _, err := parseChatID("not-a-number"); err == nil {
		t.Error("Expected error for non-numeric chat id")
	}
}

func TestChannelUsername(t *testing.T) {
	if name, ok := channelUsername("@mychannel"); !ok || name != "@mychannel" {
		t.Errorf("channelUsername(@mychannel) = %q, %v", name, ok)
	}
	if _, ok := channelUsername("12345"); ok {
		t.Error("Numeric chat ids are not channel usernames")
	}
}

func TestNewClientEmptyToken(t *testing.T) {
	_, err := NewClient("")
	if err == nil {
		t.Fatal("Expected error for empty token")
	}

	var botErr *Error
	if !errors.As(err, &botErr) {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if botErr.Op != "initialize" {
		t.Errorf("Expected op 'initialize', got %q", botErr.Op)
	}
}

func TestErrorFormatting(t *testing.T) {
	underlying := errors.New("chat not found")
	err := &Error{Op: "send_message", Err: underlying}

	if err.Error() != "botapi send_message: chat not found" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("Unwrap should expose the underlying error")
	}
}
