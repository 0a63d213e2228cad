package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	credentialsFile = "credentials.json"
	sessionFile     = "session.json"
)

// Credentials holds the Telegram API credentials collected during the
// interactive auth flow. APIID is kept as a string to match the on-disk
// format; ParseAPIID converts it for the MTProto client.
type Credentials struct {
	APIID       string `json:"apiId"`
	APIHash     string `json:"apiHash"`
	PhoneNumber string `json:"phoneNumber"`
}

// ParseAPIID returns the numeric api_id.
func (c *Credentials) ParseAPIID() (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.APIID))
	if err != nil {
		return 0, fmt.Errorf("invalid apiId %q: %w", c.APIID, err)
	}
	return id, nil
}

// Store reads and writes the persisted credentials and session artifacts
// under a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. If dir is empty, DefaultDir() is
// used.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns the default storage directory, ~/.config/telegram-mcp.
func DefaultDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "telegram-mcp")
	}
	return filepath.Join(homeDir(), ".telegram-mcp")
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	// Windows fallback
	return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
}

// Dir returns the directory the store operates on.
func (s *Store) Dir() string {
	return s.dir
}

// CredentialsPath returns the path of the credentials file.
func (s *Store) CredentialsPath() string {
	return filepath.Join(s.dir, credentialsFile)
}

// SessionPath returns the path of the session file.
func (s *Store) SessionPath() string {
	return filepath.Join(s.dir, sessionFile)
}

// LoadCredentials reads the persisted credentials record. A missing file
// yields (nil, nil); malformed content or missing fields yield a descriptive
// error so a broken installation is visible instead of looking unauthenticated.
func (s *Store) LoadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(s.CredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("malformed credentials file %s: %w", s.CredentialsPath(), err)
	}
	if creds.APIID == "" || creds.APIHash == "" {
		return nil, fmt.Errorf("incomplete credentials file %s: apiId and apiHash are required", s.CredentialsPath())
	}
	return &creds, nil
}

// SaveCredentials persists the credentials record. Only the interactive auth
// flow writes credentials; the server process reads them.
func (s *Store) SaveCredentials(creds *Credentials) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.CredentialsPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// LoadSessionToken reads the persisted session blob, trimmed of surrounding
// whitespace. Absent or unreadable files yield an empty string.
func (s *Store) LoadSessionToken() string {
	data, err := os.ReadFile(s.SessionPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// HasCredentials reports whether a credentials file exists, without parsing it.
func (s *Store) HasCredentials() bool {
	_, err := os.Stat(s.CredentialsPath())
	return err == nil
}
