package mcp

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/output"
	"github.com/codemakerai/codemaker-cli/internal/processor"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions below.
var toolSchemaRegistry = map[string]ToolSchema{
	"codemaker_process": {
		Name:        "codemaker_process",
		Description: "Generate, document, edit or fix a file or every supported file in a directory, writing results back.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "File or directory to process", Required: true},
			{Name: "mode", Type: "string", Description: "code, inline-code, edit-code, document or fix-syntax (default: code)"},
			{Name: "modify", Type: "string", Description: "none, replace or insert (default: none)"},
			{Name: "code_path", Type: "string", Description: "Restrict generation to one declaration, e.g. Greeter.greet"},
			{Name: "entity", Type: "string", Description: "Declaration name to resolve into a code path"},
			{Name: "prompt", Type: "string", Description: "Instruction for edit-code mode"},
			{Name: "source_graph", Type: "boolean", Description: "Regenerate dependencies before each file"},
			{Name: "dry_run", Type: "boolean", Description: "Return diffs instead of writing files"},
		},
	},
	"codemaker_predict": {
		Name:        "codemaker_predict",
		Description: "Run predictive generation over a file or directory. Nothing is written.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "File or directory", Required: true},
		},
	},
	"codemaker_complete": {
		Name:        "codemaker_complete",
		Description: "Suggest an inline completion at a cursor position. Returns an empty completion on failure.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "Source file", Required: true},
			{Name: "offset", Type: "number", Description: "Cursor byte offset"},
			{Name: "line", Type: "number", Description: "Cursor line (1-based), used with column instead of offset"},
			{Name: "column", Type: "number", Description: "Cursor column in characters (1-based)"},
			{Name: "multiline", Type: "boolean", Description: "Allow multi-line suggestions"},
		},
	},
	"codemaker_discover": {
		Name:        "codemaker_discover",
		Description: "Resolve the extended context of a file: the dependency files that would be sent with a request.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "Source file", Required: true},
		},
	},
	"codemaker_outline": {
		Name:        "codemaker_outline",
		Description: "List the functions, types and methods of a file with the code paths generation can target.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "Source file", Required: true},
		},
	},
	"codemaker_models": {
		Name:        "codemaker_models",
		Description: "List the models the service offers.",
		Parameters:  []ParameterSchema{},
	},
	"codemaker_assistant": {
		Name:        "codemaker_assistant",
		Description: "Ask the assistant. With a file, the assistant may propose a rewrite of it.",
		Parameters: []ParameterSchema{
			{Name: "message", Type: "string", Description: "Message to the assistant", Required: true},
			{Name: "file", Type: "string", Description: "Source file the message is about"},
			{Name: "apply", Type: "boolean", Description: "Write the proposed rewrite to the file"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas
}

func processTool() mcp.Tool {
	return mcp.NewTool("codemaker_process",
		mcp.WithDescription(toolSchemaRegistry["codemaker_process"].Description),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to process")),
		mcp.WithString("mode", mcp.Description("code, inline-code, edit-code, document or fix-syntax (default: code)")),
		mcp.WithString("modify", mcp.Description("none, replace or insert (default: none)")),
		mcp.WithString("code_path", mcp.Description("Restrict generation to one declaration, e.g. Greeter.greet")),
		mcp.WithString("entity", mcp.Description("Declaration name to resolve into a code path")),
		mcp.WithString("prompt", mcp.Description("Instruction for edit-code mode")),
		mcp.WithBoolean("source_graph", mcp.Description("Regenerate dependencies before each file")),
		mcp.WithBoolean("dry_run", mcp.Description("Return diffs instead of writing files")),
	)
}

func predictTool() mcp.Tool {
	return mcp.NewTool("codemaker_predict",
		mcp.WithDescription(toolSchemaRegistry["codemaker_predict"].Description),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory")),
	)
}

func completeTool() mcp.Tool {
	return mcp.NewTool("codemaker_complete",
		mcp.WithDescription(toolSchemaRegistry["codemaker_complete"].Description),
		mcp.WithString("path", mcp.Required(), mcp.Description("Source file")),
		mcp.WithNumber("offset", mcp.Description("Cursor byte offset")),
		mcp.WithNumber("line", mcp.Description("Cursor line (1-based), used with column instead of offset")),
		mcp.WithNumber("column", mcp.Description("Cursor column in characters (1-based)")),
		mcp.WithBoolean("multiline", mcp.Description("Allow multi-line suggestions")),
	)
}

func discoverTool() mcp.Tool {
	return mcp.NewTool("codemaker_discover",
		mcp.WithDescription(toolSchemaRegistry["codemaker_discover"].Description),
		mcp.WithString("path", mcp.Required(), mcp.Description("Source file")),
	)
}

func outlineTool() mcp.Tool {
	return mcp.NewTool("codemaker_outline",
		mcp.WithDescription(toolSchemaRegistry["codemaker_outline"].Description),
		mcp.WithString("path", mcp.Required(), mcp.Description("Source file")),
	)
}

func modelsTool() mcp.Tool {
	return mcp.NewTool("codemaker_models",
		mcp.WithDescription(toolSchemaRegistry["codemaker_models"].Description),
	)
}

func assistantTool() mcp.Tool {
	return mcp.NewTool("codemaker_assistant",
		mcp.WithDescription(toolSchemaRegistry["codemaker_assistant"].Description),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message to the assistant")),
		mcp.WithString("file", mcp.Description("Source file the message is about")),
		mcp.WithBoolean("apply", mcp.Description("Write the proposed rewrite to the file")),
	)
}

func (s *Server) executeProcess(ctx context.Context, args map[string]any) (string, error) {
	path, err := requiredString(args, "path")
	if err != nil {
		return "", err
	}
	path = s.resolvePath(path)

	req := processor.Request{
		Path:        path,
		Mode:        codemaker.ModeCode,
		Modify:      codemaker.ModifyNone,
		CodePath:    stringArg(args, "code_path"),
		Prompt:      stringArg(args, "prompt"),
		SourceGraph: boolArg(args, "source_graph"),
		Command:     "mcp",
	}
	if m := stringArg(args, "mode"); m != "" {
		if req.Mode, err = codemaker.ParseMode(m); err != nil {
			return "", err
		}
	}
	if m := stringArg(args, "modify"); m != "" {
		if req.Modify, err = codemaker.ParseModify(m); err != nil {
			return "", err
		}
	}
	if req.Mode == codemaker.ModeEditCode && req.Prompt == "" {
		return "", fmt.Errorf("prompt parameter is required for edit-code mode")
	}
	if entity := stringArg(args, "entity"); entity != "" && req.CodePath == "" {
		if req.CodePath, err = s.processor.ResolveCodePath(ctx, path, entity); err != nil {
			return "", err
		}
	}

	p := s.processor
	var dry *workspace.DryRun
	if boolArg(args, "dry_run") {
		dry = workspace.NewDryRun(workspace.OS{})
		p = s.newProcessor(dry, false)
	}

	summary, err := p.Run(ctx, req)
	if err != nil {
		return "", err
	}
	return toJSON(summary.Report(dry))
}

func (s *Server) executePredict(ctx context.Context, args map[string]any) (string, error) {
	path, err := requiredString(args, "path")
	if err != nil {
		return "", err
	}
	summary, err := s.processor.Predict(ctx, s.resolvePath(path))
	if err != nil {
		return "", err
	}
	return toJSON(summary.Report(nil))
}

func (s *Server) executeComplete(ctx context.Context, args map[string]any) (string, error) {
	path, err := requiredString(args, "path")
	if err != nil {
		return "", err
	}
	path = s.resolvePath(path)

	req := processor.CompletionRequest{Path: path}
	if _, ok := args["multiline"]; ok {
		multiline := boolArg(args, "multiline")
		req.Multiline = &multiline
	}

	if offset, ok := intArg(args, "offset"); ok {
		req.Offset = offset
	} else if line, ok := intArg(args, "line"); ok {
		column, ok := intArg(args, "column")
		if !ok {
			return "", fmt.Errorf("column parameter is required with line")
		}
		source, err := workspace.OS{}.Read(path)
		if err != nil {
			return "", err
		}
		if req.Offset, err = processor.OffsetAt(source, line, column); err != nil {
			return "", err
		}
		req.Source = source
	} else {
		return "", fmt.Errorf("offset or line and column parameters are required")
	}

	completion, err := s.processor.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return toJSON(output.CompletionOutput{File: path, Offset: req.Offset, Completion: completion})
}

func (s *Server) executeDiscover(ctx context.Context, args map[string]any) (string, error) {
	path, err := requiredString(args, "path")
	if err != nil {
		return "", err
	}
	discovered, err := s.processor.Discover(ctx, s.resolvePath(path))
	if err != nil {
		return "", err
	}
	return toJSON(discovered.Report())
}

func (s *Server) executeOutline(ctx context.Context, args map[string]any) (string, error) {
	path, err := requiredString(args, "path")
	if err != nil {
		return "", err
	}
	outline, err := s.processor.Outline(ctx, s.resolvePath(path))
	if err != nil {
		return "", err
	}
	return toJSON(outline)
}

func (s *Server) executeModels(ctx context.Context) (string, error) {
	resp, err := s.api.ListModels(ctx, &codemaker.ListModelsRequest{})
	if err != nil {
		return "", err
	}
	out := output.ModelsOutput{Models: []output.ModelEntry{}}
	for _, m := range resp.Models {
		out.Models = append(out.Models, output.ModelEntry{ID: m.ID, Name: m.Name})
	}
	return toJSON(out)
}

func (s *Server) executeAssistant(ctx context.Context, args map[string]any) (string, error) {
	message, err := requiredString(args, "message")
	if err != nil {
		return "", err
	}

	file := stringArg(args, "file")
	if file == "" {
		reply, err := s.processor.Assistant(ctx, message)
		if err != nil {
			return "", err
		}
		return toJSON(output.AssistantOutput{Message: reply})
	}

	file = s.resolvePath(file)
	reply, err := s.processor.AssistantCode(ctx, file, message, boolArg(args, "apply"))
	if err != nil {
		return "", err
	}
	return toJSON(output.AssistantOutput{Message: reply.Message, File: file, Applied: reply.Applied})
}
