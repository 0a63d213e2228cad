package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tdsession "github.com/gotd/td/session"
)

func TestLoadCredentialsAbsent(t *testing.T) {
	store := NewStore(t.TempDir())

	creds, err := store.LoadCredentials()
	if err != nil {
		t.Fatalf("Expected no error for absent credentials, got: %v", err)
	}
	if creds != nil {
		t.Errorf("Expected nil credentials for absent file, got: %+v", creds)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	in := &Credentials{
		APIID:       "123",
		APIHash:     "abc",
		PhoneNumber: "+10000000000",
	}
	if err := store.SaveCredentials(in); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	out, err := store.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if out == nil {
		t.Fatal("Expected credentials, got nil")
	}
	if *out != *in {
		t.Errorf("Round-trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestLoadCredentialsFixedFormat(t *testing.T) {
	// The on-disk format is part of the external interface; other processes
	// write it too.
	dir := t.TempDir()
	payload := `{"apiId":"123","apiHash":"abc","phoneNumber":"+10000000000"}`
	if err := os.WriteFile(filepath.Join(dir, "credentials.json"), []byte(payload), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(dir)
	creds, err := store.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if creds.APIID != "123" || creds.APIHash != "abc" || creds.PhoneNumber != "+10000000000" {
		t.Errorf("Unexpected credentials: %+v", creds)
	}

	id, err := creds.ParseAPIID()
	if err != nil {
		t.Fatalf("ParseAPIID failed: %v", err)
	}
	if id != 123 {
		t.Errorf("ParseAPIID = %d, want 123", id)
	}
}

func TestLoadCredentialsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "invalid json", payload: `{"apiId": 123,`},
		{name: "missing apiHash", payload: `{"apiId":"123","phoneNumber":"+1"}`},
		{name: "missing apiId", payload: `{"apiHash":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "credentials.json"), []byte(tt.payload), 0600); err != nil {
				t.Fatal(err)
			}

			store := NewStore(dir)
			creds, err := store.LoadCredentials()
			if err == nil {
				t.Errorf("Expected descriptive error for malformed credentials, got creds=%+v", creds)
			}
		})
	}
}

func TestParseAPIIDInvalid(t *testing.T) {
	creds := &Credentials{APIID: "not-a-number"}
	if _, err := creds.ParseAPIID(); err == nil {
		t.Error("Expected error for non-numeric apiId")
	}
}

func TestLoadSessionTokenTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("  opaque-token\n\n"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(dir)
	if got := store.LoadSessionToken(); got != "opaque-token" {
		t.Errorf("LoadSessionToken() = %q, want %q", got, "opaque-token")
	}
}

func TestLoadSessionTokenAbsent(t *testing.T) {
	store := NewStore(t.TempDir())
	if got := store.LoadSessionToken(); got != "" {
		t.Errorf("Expected empty token for absent file, got %q", got)
	}
}

func TestStorageRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	storage := store.Storage()
	ctx := context.Background()

	// Absent session reports ErrNotFound so the client starts a fresh login.
	if _, err := storage.LoadSession(ctx); !errors.Is(err, tdsession.ErrNotFound) {
		t.Errorf("Expected session.ErrNotFound for absent session, got: %v", err)
	}

	blob := []byte(`{"key":"value"}`)
	if err := storage.StoreSession(ctx, blob); err != nil {
		t.Fatalf("StoreSession failed: %v", err)
	}

	loaded, err := storage.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if string(loaded) != string(blob) {
		t.Errorf("LoadSession = %q, want %q", loaded, blob)
	}

	// The same blob is visible through the plain token accessor.
	if got := store.LoadSessionToken(); got != string(blob) {
		t.Errorf("LoadSessionToken = %q, want %q", got, blob)
	}
}

func TestHasCredentials(t *testing.T) {
	store := NewStore(t.TempDir())
	if store.HasCredentials() {
		t.Error("HasCredentials should be false for an empty directory")
	}

	if err := store.SaveCredentials(&Credentials{APIID: "1", APIHash: "h"}); err != nil {
		t.Fatal(err)
	}
	if !store.HasCredentials() {
		t.Error("HasCredentials should be true after SaveCredentials")
	}
}

func TestNewStoreDefaultDir(t *testing.T) {
	store := NewStore("")
	if store.Dir() == "" {
		t.Error("NewStore(\"\") should fall back to a default directory")
	}
}
