package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codemakerai/codemaker-cli/internal/logger"
	"github.com/codemakerai/codemaker-cli/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call any MCP tool from the command line",
	Long: `Call a codemaker MCP tool with structured JSON input and output, without
starting a server.

Modes:
  codemaker call --list                         List all tools and parameters
  codemaker call <tool> '{"key":"value"}'       Call a tool with JSON args
  codemaker call --pipe                         Read JSON lines from stdin

Tool names accept shorthand: "outline" is equivalent to "codemaker_outline".

Examples:
  codemaker call --list
  codemaker call outline '{"path":"server.go"}'
  codemaker call discover '{"path":"src/app.ts"}'
  codemaker call process '{"path":"lib/","mode":"document","dry_run":true}'
  codemaker call complete '{"path":"main.go","line":12,"column":5}'
  echo '{"tool":"codemaker_outline","args":{"path":"a.py"}}' | codemaker call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList(cmd)
	}
	if !callPipe && len(args) == 0 {
		return fmt.Errorf("tool name required (run 'codemaker call --list' to see available tools)")
	}

	srv, err := newCallServer()
	if err != nil {
		return err
	}
	if callPipe {
		return runCallPipe(cmd, srv)
	}
	return runCallSingle(cmd, srv, args)
}

// newCallServer builds an in-process server exposing every tool.
func newCallServer() (*mcp.Server, error) {
	a, err := loadApp()
	if err != nil {
		return nil, err
	}
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools}, mcp.Deps{
		API:      client,
		Settings: a.settings,
		Journal:  a.openJournal(),
		Log:      logger.ForComponent("mcp"),
	})
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	return srv, nil
}

func runCallList(cmd *cobra.Command) error {
	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools}, mcp.Deps{})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	schemas := srv.GetToolSchemas()
	out := cmd.OutOrStdout()

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	case "jsonl":
		enc := json.NewEncoder(out)
		for _, s := range schemas {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	default: // yaml
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schemas)
	}
}

func runCallSingle(cmd *cobra.Command, srv *mcp.Server, args []string) error {
	toolName := normalizeToolName(args[0])

	toolArgs := make(map[string]any)
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	}

	result, err := srv.CallTool(cmd.Context(), toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(cmd *cobra.Command, srv *mcp.Server) error {
	ctx := cmd.Context()
	enc := json.NewEncoder(cmd.OutOrStdout())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	// Allow larger lines (4MB); process arguments can carry whole files
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}

		if req.Args == nil {
			req.Args = make(map[string]any)
		}

		result, err := srv.CallTool(ctx, normalizeToolName(req.Tool), req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		// Results are JSON already; anything else is wrapped as a string
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			b, _ := json.Marshal(result)
			raw = b
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
// "outline" -> "codemaker_outline", "codemaker_outline" -> "codemaker_outline"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, "codemaker_") {
		return "codemaker_" + name
	}
	return name
}
