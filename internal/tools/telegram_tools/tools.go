package telegram_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/telegram-mcp/telegram-mcp/internal/instrumentation"
	"github.com/telegram-mcp/telegram-mcp/internal/server"
	"github.com/telegram-mcp/telegram-mcp/internal/session"
	"github.com/telegram-mcp/telegram-mcp/internal/telegram"
	"github.com/telegram-mcp/telegram-mcp/internal/tools/common"
)

// notConnectedMsg is returned by every data tool when no live client exists.
const notConnectedMsg = "Not connected to Telegram. Use connect_telegram or auto_connect first."

// requireClient returns the live Telegram client or an error envelope when
// none exists. No network call happens on the failure path.
func requireClient(sc *server.ServerContext) (*telegram.Client, *mcp.CallToolResult) {
	client := sc.TelegramClient()
	if client == nil {
		return nil, mcp.NewToolResultError(notConnectedMsg)
	}
	return client, nil
}

// connect establishes a new client and installs it as the process's live
// connection, closing any previous one.
func connect(ctx context.Context, sc *server.ServerContext, creds *session.Credentials) error {
	apiID, err := creds.ParseAPIID()
	if err != nil {
		return err
	}

	client, err := telegram.Connect(ctx, telegram.Config{
		APIID:          apiID,
		APIHash:        creds.APIHash,
		SessionStorage: sc.Store().Storage(),
	})
	if err != nil {
		if m := sc.Metrics(); m != nil {
			m.RecordConnectAttempt(ctx, instrumentation.ConnectResultFailure)
		}
		return err
	}

	sc.SetTelegramClient(client)
	if m := sc.Metrics(); m != nil {
		m.RecordConnectAttempt(ctx, instrumentation.ConnectResultSuccess)
		m.IncrementActiveConnections(ctx)
	}
	return nil
}

// RegisterTelegramTools registers all user-account tools with the MCP server.
func RegisterTelegramTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	connectTool := mcp.NewTool("connect_telegram",
		mcp.WithDescription("Connect to Telegram using API credentials and a previously saved session"),
		mcp.WithString("apiId",
			mcp.Required(),
			mcp.Description("Telegram API ID from https://my.telegram.org"),
		),
		mcp.WithString("apiHash",
			mcp.Required(),
			mcp.Description("Telegram API hash from https://my.telegram.org"),
		),
		mcp.WithString("phoneNumber",
			mcp.Description("Phone number in international format (used for logging only)"),
		),
	)
	s.AddTool(connectTool, common.InstrumentedToolHandlerWithService(
		"connect_telegram", instrumentation.ServiceTelegram, instrumentation.OperationConnect,
		sc, ConnectTelegramHandler(sc)))

	autoConnectTool := mcp.NewTool("auto_connect",
		mcp.WithDescription("Connect to Telegram using saved credentials and session from the session store"),
	)
	s.AddTool(autoConnectTool, common.InstrumentedToolHandlerWithService(
		"auto_connect", instrumentation.ServiceTelegram, instrumentation.OperationConnect,
		sc, AutoConnectHandler(sc)))

	getDialogsTool := mcp.NewTool("get_dialogs",
		mcp.WithDescription("List recent conversations (users, groups, channels) with unread counts and last messages"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of dialogs to return (default: 100)"),
		),
	)
	s.AddTool(getDialogsTool, common.InstrumentedToolHandlerWithService(
		"get_dialogs", instrumentation.ServiceTelegram, instrumentation.OperationList,
		sc, GetDialogsHandler(sc)))

	getMessagesTool := mcp.NewTool("get_messages",
		mcp.WithDescription("Fetch message history for a chat, group, or channel"),
		mcp.WithString("entityId",
			mcp.Required(),
			mcp.Description("Chat identifier: numeric ID or @username"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages to return (default: 50)"),
		),
		mcp.WithNumber("offsetId",
			mcp.Description("Only return messages older than this message ID (for pagination)"),
		),
	)
	s.AddTool(getMessagesTool, common.InstrumentedToolHandlerWithService(
		"get_messages", instrumentation.ServiceTelegram, instrumentation.OperationGet,
		sc, GetMessagesHandler(sc)))

	searchGlobalTool := mcp.NewTool("search_global",
		mcp.WithDescription("Search messages across all chats"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 50)"),
		),
	)
	s.AddTool(searchGlobalTool, common.InstrumentedToolHandlerWithService(
		"search_global", instrumentation.ServiceTelegram, instrumentation.OperationSearch,
		sc, SearchGlobalHandler(sc)))

	getMeTool := mcp.NewTool("get_me",
		mcp.WithDescription("Get the authenticated account's own identity"),
	)
	s.AddTool(getMeTool, common.InstrumentedToolHandlerWithService(
		"get_me", instrumentation.ServiceTelegram, instrumentation.OperationGet,
		sc, GetMeHandler(sc)))

	return nil
}

// ConnectTelegramHandler connects with credentials supplied as arguments.
// Credentials are not persisted; only the separate auth flow writes to the
// session store.
func ConnectTelegramHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		apiID, ok := common.StringArg(args, "apiId")
		if !ok || apiID == "" {
			return mcp.NewToolResultError("apiId is required"), nil
		}
		apiHash, ok := common.StringArg(args, "apiHash")
		if !ok || apiHash == "" {
			return mcp.NewToolResultError("apiHash is required"), nil
		}
		phone, _ := common.StringArg(args, "phoneNumber")

		creds := &session.Credentials{
			APIID:       apiID,
			APIHash:     apiHash,
			PhoneNumber: phone,
		}

		if err := connect(ctx, sc, creds); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to connect to Telegram: %v", err)), nil
		}

		return mcp.NewToolResultText("Successfully connected to Telegram!"), nil
	}
}

// AutoConnectHandler connects using credentials and session from the session
// store.
func AutoConnectHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		creds, err := sc.Store().LoadCredentials()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load credentials: %v", err)), nil
		}
		if creds == nil {
			return mcp.NewToolResultError("No saved credentials found. Run 'telegram-mcp auth' to sign in first."), nil
		}

		if sc.Store().LoadSessionToken() == "" {
			return mcp.NewToolResultError("No saved session found. Run 'telegram-mcp auth' to sign in first."), nil
		}

		if err := connect(ctx, sc, creds); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to connect to Telegram: %v", err)), nil
		}

		return mcp.NewToolResultText("Successfully connected to Telegram using saved session!"), nil
	}
}

// GetDialogsHandler lists recent conversations.
func GetDialogsHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, errResult := requireClient(sc)
		if errResult != nil {
			return errResult, nil
		}

		limit := common.IntArg(request.GetArguments(), "limit", telegram.DefaultDialogLimit)

		dialogs, err := client.GetDialogs(ctx, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get dialogs: %v", err)), nil
		}

		result, _ := json.MarshalIndent(dialogs, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}
}

// GetMessagesHandler fetches message history for one entity.
func GetMessagesHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, errResult := requireClient(sc)
		if errResult != nil {
			return errResult, nil
		}

		args := request.GetArguments()

		entityID, ok := common.StringArg(args, "entityId")
		if !ok || entityID == "" {
			return mcp.NewToolResultError("entityId is required"), nil
		}

		limit := common.IntArg(args, "limit", telegram.DefaultMessageLimit)
		offsetID := common.IntArg(args, "offsetId", 0)

		messages, err := client.GetMessages(ctx, entityID, limit, offsetID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get messages: %v", err)), nil
		}

		result, _ := json.MarshalIndent(messages, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}
}

// SearchGlobalHandler searches messages across all chats. The backend
// response is passed through as-is.
func SearchGlobalHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, errResult := requireClient(sc)
		if errResult != nil {
			return errResult, nil
		}

		args := request.GetArguments()

		query, ok := common.StringArg(args, "query")
		if !ok || query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		limit := common.IntArg(args, "limit", telegram.DefaultSearchLimit)

		raw, err := client.SearchGlobal(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search messages: %v", err)), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	}
}

// GetMeHandler returns the authenticated account's identity.
func GetMeHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, errResult := requireClient(sc)
		if errResult != nil {
			return errResult, nil
		}

		me, err := client.GetMe(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get own identity: %v", err)), nil
		}

		result, _ := json.MarshalIndent(me, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}
}
