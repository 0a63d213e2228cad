package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/telegram-mcp/telegram-mcp/internal/botapi"
	"github.com/telegram-mcp/telegram-mcp/internal/instrumentation"
	"github.com/telegram-mcp/telegram-mcp/internal/logging"
	"github.com/telegram-mcp/telegram-mcp/internal/session"
	"github.com/telegram-mcp/telegram-mcp/internal/telegram"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	store    *session.Store
	botToken string

	tg  *telegram.Client // live user-account connection, nil until connect
	bot *botapi.Client   // lazily created from botToken

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. botToken may be empty; bot
// tools then fail with a configuration error instead of a broken client.
func NewServerContext(ctx context.Context, store *session.Store, botToken string) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if store == nil {
		store = session.NewStore("")
	}

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		store:    store,
		botToken: botToken,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the session store.
func (sc *ServerContext) Store() *session.Store {
	return sc.store
}

// TelegramClient returns the live user-account client, or nil when no
// connection has been established yet.
func (sc *ServerContext) TelegramClient() *telegram.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.tg
}

// SetTelegramClient installs a new live connection. Any previous connection
// is closed first so a reconnect cannot leak the old one, and the active
// connections gauge is decremented for the closed one.
func (sc *ServerContext) SetTelegramClient(client *telegram.Client) {
	sc.mu.Lock()
	old := sc.tg
	sc.tg = client
	sc.mu.Unlock()

	if old != nil && old != client {
		if err := old.Close(); err != nil {
			slog.Warn("failed to close previous telegram connection", logging.Err(err))
		}
		if m := sc.Metrics(); m != nil {
			m.DecrementActiveConnections(context.Background())
		}
	}
}

// BotClient returns the Bot API client, creating it on first use.
// Returns an error when no bot token is configured.
func (sc *ServerContext) BotClient() (*botapi.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.bot != nil {
		return sc.bot, nil
	}

	client, err := botapi.NewClient(sc.botToken)
	if err != nil {
		return nil, err
	}
	sc.bot = client
	return client, nil
}

// HasBotToken reports whether a bot token is configured.
func (sc *ServerContext) HasBotToken() bool {
	return sc.botToken != ""
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool instrumentation.
func (sc *ServerContext) SetAuditLogger(l *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = l
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown tears down the live connection and cancels the context.
// Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	tg := sc.tg
	sc.tg = nil
	sc.mu.Unlock()

	var err error
	if tg != nil {
		err = tg.Close()
		if m := sc.Metrics(); m != nil {
			m.DecrementActiveConnections(context.Background())
		}
	}
	sc.cancel()
	return err
}
