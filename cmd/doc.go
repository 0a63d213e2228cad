// Package cmd implements the command-line interface for telegram-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing Telegram tools for AI assistants
//   - auth: Interactively sign in to Telegram and persist the session
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
