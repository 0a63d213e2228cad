// Package telegram_tools provides MCP tools for the user-account side of the
// server: connecting with MTProto credentials, listing dialogs, fetching
// message history, global search, and identity lookup.
//
// Handlers are built by named constructors taking a *server.ServerContext so
// they can be invoked directly in tests without a transport. Every failure
// path returns an error envelope (isError set); handlers never return a Go
// error to the dispatcher.
package telegram_tools
