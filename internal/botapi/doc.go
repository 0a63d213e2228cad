// Package botapi provides a thin client for the Telegram Bot API.
//
// Unlike the user-account client in internal/telegram, this adapter speaks
// the HTTP Bot API through go-telegram-bot-api and needs only a bot token.
// It covers sending text messages and photos and polling raw updates.
package botapi
