package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/gotd/contrib/bg"
	tdsession "github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/peers"
	"github.com/gotd/td/tg"
)

const (
	// DefaultDialogLimit is the dialog count fetched when no limit is given.
	DefaultDialogLimit = 100

	// DefaultMessageLimit is the history page size when no limit is given.
	DefaultMessageLimit = 50

	// DefaultSearchLimit is the global search page size when no limit is given.
	DefaultSearchLimit = 50

	// dialogScanLimit bounds the dialog scan used to recover access hashes
	// when resolving a bare numeric entity id.
	dialogScanLimit = 100
)

// ErrNotAuthorized is returned when the persisted session exists but is not
// (or no longer) authorized with Telegram.
var ErrNotAuthorized = errors.New("session is not authorized; run 'telegram-mcp auth' to sign in")

// Config holds what Connect needs to establish a connection.
type Config struct {
	// APIID and APIHash identify the application to Telegram.
	APIID   int
	APIHash string

	// SessionStorage provides the persisted session blob. Required; an
	// empty session makes Connect fail with ErrNotAuthorized because this
	// process never performs interactive login.
	SessionStorage tdsession.Storage

	// AppVersion is reported to Telegram as part of the device config.
	AppVersion string
}

// Client owns one live MTProto connection to Telegram. Create it with
// Connect and release it with Close; all methods require the connection to
// be live.
type Client struct {
	client *telegram.Client
	api    *tg.Client
	peers  *peers.Manager
	stop   bg.StopFunc
	self   *tg.User
}

// Connect establishes a background connection using the given credentials
// and whatever session the storage holds, then verifies that the session is
// authorized. The caller owns the returned client and must Close it.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	version := cfg.AppVersion
	if version == "" {
		version = "dev"
	}

	client := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: cfg.SessionStorage,
		Device: telegram.DeviceConfig{
			DeviceModel:   "telegram-mcp",
			SystemVersion: runtime.GOOS,
			AppVersion:    version,
		},
	})

	stop, err := bg.Connect(client)
	if err != nil {
		return nil, &Error{Op: "connect", Err: err}
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		_ = stop()
		return nil, &Error{Op: "connect", Err: fmt.Errorf("failed to check auth status: %w", err)}
	}
	if !status.Authorized {
		_ = stop()
		return nil, &Error{Op: "connect", Err: ErrNotAuthorized}
	}

	self, err := client.Self(ctx)
	if err != nil {
		_ = stop()
		return nil, &Error{Op: "connect", Err: fmt.Errorf("failed to load own identity: %w", err)}
	}

	api := client.API()
	return &Client{
		client: client,
		api:    api,
		peers:  peers.Options{}.Build(api),
		stop:   stop,
		self:   self,
	}, nil
}

// Close stops the background connection. It is idempotent.
func (c *Client) Close() error {
	if c == nil || c.stop == nil {
		return nil
	}
	stop := c.stop
	c.stop = nil
	return stop()
}

// GetDialogs returns up to limit conversation summaries, most recent first.
func (c *Client) GetDialogs(ctx context.Context, limit int) ([]Dialog, error) {
	if limit <= 0 {
		limit = DefaultDialogLimit
	}

	res, err := c.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		Limit:      limit,
		OffsetPeer: &tg.InputPeerEmpty{},
	})
	if err != nil {
		return nil, &Error{Op: "get_dialogs", Err: err}
	}

	dialogs, err := normalizeDialogs(res)
	if err != nil {
		return nil, &Error{Op: "get_dialogs", Err: err}
	}
	return dialogs, nil
}

// GetMessages fetches up to limit messages from the entity identified by
// entityID (numeric id or @username), optionally paginating before offsetID.
func (c *Client) GetMessages(ctx context.Context, entityID string, limit, offsetID int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	peer, err := c.resolvePeer(ctx, entityID)
	if err != nil {
		return nil, &Error{Op: "get_messages", Err: fmt.Errorf("failed to resolve entity %q: %w", entityID, err)}
	}

	res, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     peer,
		Limit:    limit,
		OffsetID: offsetID,
	})
	if err != nil {
		return nil, &Error{Op: "get_messages", Err: err}
	}

	messages, err := normalizeHistory(res)
	if err != nil {
		return nil, &Error{Op: "get_messages", Err: err}
	}
	return messages, nil
}

// SearchGlobal performs a global message search and returns the raw backend
// response re-serialized as pretty JSON. No normalization is applied.
func (c *Client) SearchGlobal(ctx context.Context, query string, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	res, err := c.api.MessagesSearchGlobal(ctx, &tg.MessagesSearchGlobalRequest{
		Q:          query,
		Filter:     &tg.InputMessagesFilterEmpty{},
		OffsetRate: 0,
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      limit,
	})
	if err != nil {
		return nil, &Error{Op: "search_global", Err: err}
	}

	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, &Error{Op: "search_global", Err: fmt.Errorf("failed to encode response: %w", err)}
	}
	return raw, nil
}

// GetMe returns the authenticated account's own identity.
func (c *Client) GetMe(ctx context.Context) (Me, error) {
	self, err := c.client.Self(ctx)
	if err != nil {
		// The cached identity from connect time is still good enough to
		// answer with.
		if c.self != nil {
			return toMe(c.self), nil
		}
		return Me{}, &Error{Op: "get_me", Err: err}
	}
	c.self = self
	return toMe(self), nil
}

// resolvePeer turns an entity id into an addressable input peer. Usernames
// go through the peer manager; bare numeric ids are matched against recent
// dialogs to recover the access hash Telegram requires.
func (c *Client) resolvePeer(ctx context.Context, entityID string) (tg.InputPeerClass, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, errors.New("entity id is empty")
	}

	if strings.HasPrefix(entityID, "@") {
		p, err := c.peers.Resolve(ctx, entityID)
		if err != nil {
			return nil, err
		}
		return p.InputPeer(), nil
	}

	id, err := strconv.ParseInt(entityID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("entity must be a numeric id or @username: %w", err)
	}

	res, err := c.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		Limit:      dialogScanLimit,
		OffsetPeer: &tg.InputPeerEmpty{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dialogs: %w", err)
	}

	var (
		chats []tg.ChatClass
		users []tg.UserClass
	)
	switch r := res.(type) {
	case *tg.MessagesDialogs:
		chats, users = r.Chats, r.Users
	case *tg.MessagesDialogsSlice:
		chats, users = r.Chats, r.Users
	default:
		return nil, fmt.Errorf("unexpected dialogs response type %T", res)
	}

	for _, uc := range users {
		if u, ok := uc.(*tg.User); ok && u.ID == id {
			return &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}, nil
		}
	}
	for _, cc := range chats {
		switch ch := cc.(type) {
		case *tg.Chat:
			if ch.ID == id {
				return &tg.InputPeerChat{ChatID: ch.ID}, nil
			}
		case *tg.Channel:
			if ch.ID == id {
				return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, nil
			}
		}
	}

	return nil, fmt.Errorf("entity %d not found among recent dialogs", id)
}
