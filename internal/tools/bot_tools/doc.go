// Package bot_tools provides MCP tools backed by the Telegram Bot API:
// sending messages and photos and polling raw updates. The bot client is
// created lazily from the configured token; without a token every tool
// returns a fixed error envelope.
package bot_tools
