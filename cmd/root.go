package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the aura application
var rootCmd = &cobra.Command{
	Use:   "aura",
	Short: "Personal assistant MCP server with LLM-designed tables",
	Long: `aura is an MCP (Model Context Protocol) server for AI assistants.

It lets an assistant describe tables in natural language, stores entities in
a local DuckDB database with vector search over embedded text fields, and
manages Gmail labels and Google Calendar events.`,
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
	rootCmd.SetVersionTemplate(`{{printf "aura version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
