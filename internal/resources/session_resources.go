package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/telegram-mcp/telegram-mcp/internal/logging"
	"github.com/telegram-mcp/telegram-mcp/internal/server"
)

// RegisterSessionResources registers resources describing the server's
// session state and the connected account.
func RegisterSessionResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sessionResource := mcp.NewResource(
		"telegram://session",
		"Session Status",
		mcp.WithResourceDescription("Saved credentials, session, and connection state of this server"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(sessionResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSessionStatus(ctx, request, sc)
	})

	meResource := mcp.NewResource(
		"telegram://me",
		"Connected Account",
		mcp.WithResourceDescription("Identity of the currently connected Telegram account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(meResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleConnectedAccount(ctx, request, sc)
	})

	return nil
}

// handleSessionStatus reports what is on disk and whether a client is live.
// The phone number from saved credentials is never exposed directly, only as
// an anonymized hash.
func handleSessionStatus(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	store := sc.Store()

	status := map[string]interface{}{
		"sessionDir":         store.Dir(),
		"hasCredentials":     store.HasCredentials(),
		"hasSession":         store.LoadSessionToken() != "",
		"connected":          sc.TelegramClient() != nil,
		"botTokenConfigured": sc.HasBotToken(),
	}

	if creds, err := store.LoadCredentials(); err == nil && creds != nil {
		status["userHash"] = logging.AnonymizePhone(creds.PhoneNumber)
	}

	return jsonContents(request.Params.URI, status)
}

// handleConnectedAccount returns the connected account's identity.
func handleConnectedAccount(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client := sc.TelegramClient()
	if client == nil {
		return nil, fmt.Errorf("not connected to Telegram: use connect_telegram or auto_connect first")
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get account identity: %w", err)
	}

	return jsonContents(request.Params.URI, me)
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
