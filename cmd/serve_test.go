package cmd

import (
	"testing"
)

func TestEnvFallback(t *testing.T) {
	t.Setenv("TELEGRAM_MCP_TEST_VAR", "from-env")

	tests := []struct {
		name string
		val  string
		env  string
		want string
	}{
		{"flag wins", "from-flag", "TELEGRAM_MCP_TEST_VAR", "from-flag"},
		{"env fallback", "", "TELEGRAM_MCP_TEST_VAR", "from-env"},
		{"both empty", "", "TELEGRAM_MCP_TEST_UNSET", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := envFallback(tt.val, tt.env); got != tt.want {
				t.Errorf("envFallback(%q, %q) = %q, want %q", tt.val, tt.env, got, tt.want)
			}
		})
	}
}

func TestNewServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()

	for _, name := range []string{"transport", "http-addr", "session-dir", "bot-token", "metrics-enabled", "metrics-addr", "debug"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("serve command is missing --%s flag", name)
		}
	}

	if got := cmd.Flags().Lookup("transport").DefValue; got != "stdio" {
		t.Errorf("default transport = %q, want %q", got, "stdio")
	}
}

func TestNewAuthCmd_RequiredFlags(t *testing.T) {
	cmd := newAuthCmd()

	for _, name := range []string{"api-id", "api-hash", "phone", "session-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("auth command is missing --%s flag", name)
		}
	}
}

func TestRunServe_UnsupportedTransport(t *testing.T) {
	err := runServe("carrier-pigeon", false, "", t.TempDir(), "", MetricsConfig{})
	if err == nil {
		t.Fatal("expected error for unsupported transport")
	}
}
