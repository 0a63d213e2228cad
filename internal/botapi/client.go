package botapi

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client wraps a Bot API connection for one bot token.
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient authenticates the bot token against the Bot API.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, &Error{Op: "initialize", Err: fmt.Errorf("bot token cannot be empty")}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, &Error{Op: "initialize", Err: err}
	}
	return &Client{bot: bot}, nil
}

// Username returns the authenticated bot's username.
func (c *Client) Username() string {
	if c.bot == nil || c.bot.Self.UserName == "" {
		return ""
	}
	return c.bot.Self.UserName
}

// SendMessage sends a text message and returns the sent message's id.
// chatID is a numeric chat id or a @channelusername; parseMode is one of
// the ParseMode constants or empty for plain text.
func (c *Client) SendMessage(chatID, text, parseMode string) (int, error) {
	if !ValidParseMode(parseMode) {
		return 0, &Error{Op: "send_message", Err: fmt.Errorf("invalid parse mode %q (expected HTML, Markdown or MarkdownV2)", parseMode)}
	}

	var msg tgbotapi.MessageConfig
	if username, ok := channelUsername(chatID); ok {
		msg = tgbotapi.NewMessageToChannel(username, text)
	} else {
		id, err := parseChatID(chatID)
		if err != nil {
			return 0, &Error{Op: "send_message", Err: err}
		}
		msg = tgbotapi.NewMessage(id, text)
	}
	msg.ParseMode = parseMode

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, &Error{Op: "send_message", Err: err}
	}
	return sent.MessageID, nil
}

// SendPhoto sends a photo by URL or local file path with an optional caption
// and returns the sent message's id.
func (c *Client) SendPhoto(chatID, photo, caption string) (int, error) {
	var file tgbotapi.RequestFileData
	if strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
		file = tgbotapi.FileURL(photo)
	} else {
		file = tgbotapi.FilePath(photo)
	}

	var cfg tgbotapi.PhotoConfig
	if username, ok := channelUsername(chatID); ok {
		cfg = tgbotapi.NewPhotoToChannel(username, file)
	} else {
		id, err := parseChatID(chatID)
		if err != nil {
			return 0, &Error{Op: "send_photo", Err: err}
		}
		cfg = tgbotapi.NewPhoto(id, file)
	}
	cfg.Caption = caption

	sent, err := c.bot.Send(cfg)
	if err != nil {
		return 0, &Error{Op: "send_photo", Err: err}
	}
	return sent.MessageID, nil
}

// GetUpdates polls the most recent raw updates. The limit is clamped to the
// Bot API's [1, 100] bounds.
func (c *Client) GetUpdates(limit int) ([]tgbotapi.Update, error) {
	updates, err := c.bot.GetUpdates(tgbotapi.UpdateConfig{
		Limit: ClampUpdateLimit(limit),
	})
	if err != nil {
		return nil, &Error{Op: "get_updates", Err: err}
	}
	return updates, nil
}

// channelUsername reports whether chatID addresses a public channel by
// username.
func channelUsername(chatID string) (string, bool) {
	if strings.HasPrefix(chatID, "@") {
		return chatID, true
	}
	return "", false
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("chat id must be numeric or @channelusername, got %q", chatID)
	}
	return id, nil
}
