package bot_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/telegram-mcp/telegram-mcp/internal/botapi"
	"github.com/telegram-mcp/telegram-mcp/internal/instrumentation"
	"github.com/telegram-mcp/telegram-mcp/internal/server"
	"github.com/telegram-mcp/telegram-mcp/internal/tools/batch"
	"github.com/telegram-mcp/telegram-mcp/internal/tools/common"
)

// noTokenMsg is returned by every bot tool when no bot token is configured.
const noTokenMsg = "Bot token not configured. Start the server with --bot-token or set TELEGRAM_BOT_TOKEN."

// requireBot returns the bot client or an error envelope when no token is
// configured or the client cannot be created.
func requireBot(sc *server.ServerContext) (*botapi.Client, *mcp.CallToolResult) {
	if !sc.HasBotToken() {
		return nil, mcp.NewToolResultError(noTokenMsg)
	}

	client, err := sc.BotClient()
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create bot client: %v", err))
	}
	return client, nil
}

// RegisterBotTools registers all Bot API tools with the MCP server.
func RegisterBotTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendMessageTool := mcp.NewTool("send_telegram_message",
		mcp.WithDescription("Send a text message to a chat or channel via the bot"),
		mcp.WithString("chatId",
			mcp.Required(),
			mcp.Description("Numeric chat ID or @channelname. Pass an array to send the same message to multiple chats"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Text to send"),
		),
		mcp.WithString("parseMode",
			mcp.Description("Formatting mode: HTML, Markdown, or MarkdownV2"),
			mcp.Enum(botapi.ParseModeHTML, botapi.ParseModeMarkdown, botapi.ParseModeMarkdownV2),
		),
	)
	s.AddTool(sendMessageTool, common.InstrumentedToolHandlerWithService(
		"send_telegram_message", instrumentation.ServiceBot, instrumentation.OperationSend,
		sc, SendMessageHandler(sc)))

	sendPhotoTool := mcp.NewTool("send_telegram_photo",
		mcp.WithDescription("Send a photo to a chat or channel via the bot"),
		mcp.WithString("chatId",
			mcp.Required(),
			mcp.Description("Numeric chat ID or @channelname"),
		),
		mcp.WithString("photo",
			mcp.Required(),
			mcp.Description("Photo URL or local file path"),
		),
		mcp.WithString("caption",
			mcp.Description("Optional photo caption"),
		),
	)
	s.AddTool(sendPhotoTool, common.InstrumentedToolHandlerWithService(
		"send_telegram_photo", instrumentation.ServiceBot, instrumentation.OperationSend,
		sc, SendPhotoHandler(sc)))

	getUpdatesTool := mcp.NewTool("get_telegram_updates",
		mcp.WithDescription("Fetch recent updates (messages, callbacks) received by the bot"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of updates to return, 1-100 (default: 10)"),
		),
	)
	s.AddTool(getUpdatesTool, common.InstrumentedToolHandlerWithService(
		"get_telegram_updates", instrumentation.ServiceBot, instrumentation.OperationUpdates,
		sc, GetUpdatesHandler(sc)))

	return nil
}

// SendMessageHandler sends a text message through the bot. The chatId
// argument accepts a single target or an array of targets; multi-target
// sends return a per-chat result summary instead of a single message ID.
func SendMessageHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, errResult := requireBot(sc)
		if errResult != nil {
			return errResult, nil
		}

		args := request.GetArguments()

		chatIDs, err := batch.ParseStringOrArray(args["chatId"], "chatId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		message, ok := common.StringArg(args, "message")
		if !ok || message == "" {
			return mcp.NewToolResultError("message is required"), nil
		}

		parseMode, _ := common.StringArg(args, "parseMode")
		if !botapi.ValidParseMode(parseMode) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parseMode %q: must be HTML, Markdown, or MarkdownV2", parseMode)), nil
		}

		if len(chatIDs) == 1 {
			messageID, err := client.SendMessage(chatIDs[0], message, parseMode)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to send message: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Message sent! Message ID: %d", messageID)), nil
		}

		results := batch.ProcessBatch(chatIDs, func(chatID string) (string, error) {
			messageID, err := client.SendMessage(chatID, message, parseMode)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Message sent! Message ID: %d", messageID), nil
		})
		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

// SendPhotoHandler sends a photo through the bot.
func SendPhotoHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, errResult := requireBot(sc)
		if errResult != nil {
			return errResult, nil
		}

		args := request.GetArguments()

		chatID, ok := common.StringArg(args, "chatId")
		if !ok || chatID == "" {
			return mcp.NewToolResultError("chatId is required"), nil
		}
		photo, ok := common.StringArg(args, "photo")
		if !ok || photo == "" {
			return mcp.NewToolResultError("photo is required"), nil
		}

		caption, _ := common.StringArg(args, "caption")

		messageID, err := client.SendPhoto(chatID, photo, caption)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to send photo: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Photo sent! Message ID: %d", messageID)), nil
	}
}

// GetUpdatesHandler fetches recent raw updates received by the bot.
func GetUpdatesHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client, errResult := requireBot(sc)
		if errResult != nil {
			return errResult, nil
		}

		limit := common.IntArg(request.GetArguments(), "limit", botapi.DefaultUpdateLimit)

		updates, err := client.GetUpdates(limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get updates: %v", err)), nil
		}

		result, _ := json.MarshalIndent(updates, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}
}
