package session

import (
	"context"
	"errors"
	"os"

	tdsession "github.com/gotd/td/session"
)

// Storage returns a gotd session.Storage backed by the store's session file,
// so the MTProto client reads and refreshes the same blob the auth flow
// created.
func (s *Store) Storage() tdsession.Storage {
	return &fileStorage{store: s}
}

type fileStorage struct {
	store *Store
}

// LoadSession implements session.Storage. An absent or empty file is
// reported as session.ErrNotFound so the client falls back to a fresh login.
func (f *fileStorage) LoadSession(_ context.Context) ([]byte, error) {
	token := f.store.LoadSessionToken()
	if token == "" {
		return nil, tdsession.ErrNotFound
	}
	return []byte(token), nil
}

// StoreSession implements session.Storage.
func (f *fileStorage) StoreSession(_ context.Context, data []byte) error {
	if err := os.MkdirAll(f.store.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(f.store.SessionPath(), data, 0600)
}

// ErrNoSession is returned by connect paths when no persisted session exists.
var ErrNoSession = errors.New("no saved session found")
