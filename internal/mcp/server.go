// Package mcp provides an MCP (Model Context Protocol) server for codemaker.
// Agents call the generation, completion and discovery operations as MCP
// tools instead of shelling out to the CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/processor"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// API is the CodeMaker client surface the tools use.
type API interface {
	processor.API
	ListModels(ctx context.Context, req *codemaker.ListModelsRequest) (*codemaker.ListModelsResponse, error)
}

// Server wraps the MCP server with codemaker-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	api          API
	settings     processor.Settings
	journal      *journal.Journal
	processor    *processor.Processor
	root         string
	log          *slog.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = DefaultTools)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	// Root resolves relative paths in tool arguments. Empty means the
	// working directory.
	Root string
}

// Deps are the collaborators tool calls run against.
type Deps struct {
	API      API
	Settings processor.Settings
	Journal  *journal.Journal // optional
	Log      *slog.Logger
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"codemaker_process", "codemaker_complete", "codemaker_discover", "codemaker_outline"}

// AllTools lists all available tools
var AllTools = []string{
	"codemaker_process", "codemaker_predict", "codemaker_complete", "codemaker_discover",
	"codemaker_outline", "codemaker_models", "codemaker_assistant",
}

// New creates a new MCP server for codemaker
func New(cfg Config, deps Deps) (*Server, error) {
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		root = wd
	}
	log := deps.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	mcpServer := server.NewMCPServer(
		"codemaker",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		api:          deps.API,
		settings:     deps.Settings,
		journal:      deps.Journal,
		root:         root,
		log:          log,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}
	s.processor = s.newProcessor(workspace.OS{}, true)

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

func (s *Server) newProcessor(files workspace.Files, journaled bool) *processor.Processor {
	opts := []processor.Option{processor.WithLogger(s.log)}
	if journaled && s.journal != nil {
		opts = append(opts, processor.WithJournal(s.journal))
	}
	return processor.New(s.api, files, s.settings, opts...)
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	var tool mcp.Tool
	switch name {
	case "codemaker_process":
		tool = processTool()
	case "codemaker_predict":
		tool = predictTool()
	case "codemaker_complete":
		tool = completeTool()
	case "codemaker_discover":
		tool = discoverTool()
	case "codemaker_outline":
		tool = outlineTool()
	case "codemaker_models":
		tool = modelsTool()
	case "codemaker_assistant":
		tool = assistantTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}

	s.mcpServer.AddTool(tool, s.handle(name))
	return nil
}

// ServeStdio serves over stdin/stdout until ctx is done or, when a timeout
// is set, the server has been idle that long.
func (s *Server) ServeStdio(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.timeout > 0 {
		go s.timeoutChecker(ctx, cancel)
	}

	err := server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// timeoutChecker cancels the serve context after a period of inactivity
func (s *Server) timeoutChecker(ctx context.Context, cancel context.CancelFunc) {
	interval := 30 * time.Second
	if s.timeout < interval {
		interval = s.timeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.idle() > s.timeout {
				s.log.Info("stopping after inactivity", "timeout", s.timeout)
				cancel()
				return
			}
		}
	}
}

func (s *Server) idle() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActivity)
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tool names, sorted
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// handle adapts CallTool to an MCP tool handler. Tool failures become
// error results, not protocol errors.
func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.updateActivity()

		result, err := s.CallTool(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (available: %v)", name, s.ListTools())
	}

	switch name {
	case "codemaker_process":
		return s.executeProcess(ctx, args)
	case "codemaker_predict":
		return s.executePredict(ctx, args)
	case "codemaker_complete":
		return s.executeComplete(ctx, args)
	case "codemaker_discover":
		return s.executeDiscover(ctx, args)
	case "codemaker_outline":
		return s.executeOutline(ctx, args)
	case "codemaker_models":
		return s.executeModels(ctx)
	case "codemaker_assistant":
		return s.executeAssistant(ctx, args)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// resolvePath makes p absolute against the server root.
func (s *Server) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.root, p)
}

// Helper functions

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

func boolArg(args map[string]any, name string) bool {
	v, _ := args[name].(bool)
	return v
}

// intArg returns a numeric argument; JSON numbers arrive as float64.
func intArg(args map[string]any, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func requiredString(args map[string]any, name string) (string, error) {
	v := stringArg(args, name)
	if v == "" {
		return "", fmt.Errorf("%s parameter is required", name)
	}
	return v, nil
}

func toJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
