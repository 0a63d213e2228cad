package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the telegram-mcp application
var rootCmd = &cobra.Command{
	Use:   "telegram-mcp",
	Short: "MCP server exposing a Telegram account to AI assistants",
	Long: `telegram-mcp is an MCP (Model Context Protocol) server that exposes a
Telegram account's conversations, message history, and search to AI
assistants, plus sending capabilities through a bot token.

It can run over stdio (default) or streamable HTTP. Sign in once with
'telegram-mcp auth'; the server then reuses the saved session.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "telegram-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
