package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codemakerai/codemaker-cli/internal/logger"
	"github.com/codemakerai/codemaker-cli/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

Agents call generation, completion and context discovery as MCP tools instead
of spawning CLI commands. Diagnostics go to stderr; stdout carries the
protocol only.

Available Tools:
  codemaker_process     Generate, document, edit or fix a file or directory
  codemaker_predict     Predictive generation for a file or directory
  codemaker_complete    Inline completion at a cursor
  codemaker_discover    Context files resolved for a file
  codemaker_outline     Code paths of the declarations in a file
  codemaker_models      Available models
  codemaker_assistant   Ask the assistant, optionally about a file

Examples:
  codemaker serve --mcp                             # Start with default tools
  codemaker serve --mcp --tools process,complete    # Start with specific tools only
  codemaker serve --mcp --timeout 30m               # Stop after 30 minutes idle
  codemaker serve --list-tools                      # Show available tools`,
	RunE: runServe,
}

var (
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: process,complete,discover,outline)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		for _, name := range mcp.AllTools {
			fmt.Fprintf(out, "  %s\n", name)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Default set: %s\n", strings.Join(mcp.DefaultTools, ", "))
		return nil
	}

	if !serveMCP {
		return fmt.Errorf("use --mcp to start the MCP server, or --help for usage")
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	j := a.openJournal()
	if j != nil {
		defer j.Close()
	}

	server, err := mcp.New(mcp.Config{
		Tools:   parseToolList(serveTools),
		Timeout: timeout,
	}, mcp.Deps{
		API:      client,
		Settings: a.settings,
		Journal:  j,
		Log:      logger.ForComponent("mcp"),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintf(os.Stderr, "codemaker serve: starting MCP server\n")
	fmt.Fprintf(os.Stderr, "codemaker serve: tools: %v\n", server.ListTools())
	if timeout > 0 {
		fmt.Fprintf(os.Stderr, "codemaker serve: timeout: %v\n", timeout)
	}

	return server.ServeStdio(cmd.Context())
}

// parseToolList splits a comma-separated tool list, expanding shorthand
// names.
func parseToolList(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tools = append(tools, normalizeToolName(t))
		}
	}
	return tools
}
