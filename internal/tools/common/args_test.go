package common

import "testing"

func TestStringArg(t *testing.T) {
	args := map[string]interface{}{
		"chatId": "@golang",
		"limit":  42.0,
	}

	if val, ok := StringArg(args, "chatId"); !ok || val != "@golang" {
		t.Errorf("StringArg(chatId) = %q, %v", val, ok)
	}
	if _, ok := StringArg(args, "limit"); ok {
		t.Error("StringArg should reject non-string values")
	}
	if _, ok := StringArg(args, "missing"); ok {
		t.Error("StringArg should report absent keys")
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"limit":   25.0,
		"invalid": "ten",
	}

	if got := IntArg(args, "limit", 50); got != 25 {
		t.Errorf("IntArg(limit) = %d, want 25", got)
	}
	if got := IntArg(args, "invalid", 50); got != 50 {
		t.Errorf("IntArg(invalid) = %d, want fallback 50", got)
	}
	if got := IntArg(args, "missing", 50); got != 50 {
		t.Errorf("IntArg(missing) = %d, want fallback 50", got)
	}
	if got := IntArg(nil, "missing", 10); got != 10 {
		t.Errorf("IntArg(nil map) = %d, want fallback 10", got)
	}
}

func TestPeerFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"chatId", map[string]interface{}{"chatId": "@ch"}, "@ch"},
		{"entityId", map[string]interface{}{"entityId": "12345"}, "12345"},
		{"chatId wins", map[string]interface{}{"chatId": "@ch", "entityId": "12345"}, "@ch"},
		{"neither", map[string]interface{}{"query": "x"}, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeerFromArgs(tt.args); got != tt.want {
				t.Errorf("PeerFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}
