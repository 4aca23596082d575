package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/output"
	"github.com/codemakerai/codemaker-cli/internal/processor"
)

// fakeAPI answers every call locally. Process appends a marker line.
type fakeAPI struct {
	deps       map[string][]string
	processed  []codemaker.Process
	completion string
}

func (f *fakeAPI) Process(ctx context.Context, req *codemaker.ProcessRequest) (*codemaker.ProcessResponse, error) {
	f.processed = append(f.processed, req.Process)
	return &codemaker.ProcessResponse{Output: codemaker.Output{Source: req.Process.Input.Source + "# generated\n"}}, nil
}

func (f *fakeAPI) Predict(ctx context.Context, req *codemaker.PredictRequest) (*codemaker.PredictResponse, error) {
	return &codemaker.PredictResponse{}, nil
}

func (f *fakeAPI) Completion(ctx context.Context, req *codemaker.CompletionRequest) (*codemaker.CompletionResponse, error) {
	return &codemaker.CompletionResponse{Output: codemaker.Output{Source: f.completion + req.Process.Options.CodePath}}, nil
}

func (f *fakeAPI) DiscoverContext(ctx context.Context, req *codemaker.DiscoverContextRequest) (*codemaker.DiscoverContextResponse, error) {
	resp := &codemaker.DiscoverContextResponse{}
	for _, ref := range f.deps[req.Context.Path] {
		resp.Contexts = append(resp.Contexts, codemaker.RequiredContext{Path: ref})
	}
	return resp, nil
}

func (f *fakeAPI) CreateContext(ctx context.Context, req *codemaker.CreateContextRequest) (*codemaker.CreateContextResponse, error) {
	return &codemaker.CreateContextResponse{ID: "ctx-1"}, nil
}

func (f *fakeAPI) RegisterContext(ctx context.Context, req *codemaker.RegisterContextRequest) (*codemaker.RegisterContextResponse, error) {
	return &codemaker.RegisterContextResponse{}, nil
}

func (f *fakeAPI) AssistantCompletion(ctx context.Context, req *codemaker.AssistantCompletionRequest) (*codemaker.AssistantCompletionResponse, error) {
	return &codemaker.AssistantCompletionResponse{Message: "hi there"}, nil
}

func (f *fakeAPI) AssistantCodeCompletion(ctx context.Context, req *codemaker.AssistantCodeCompletionRequest) (*codemaker.AssistantCodeCompletionResponse, error) {
	return &codemaker.AssistantCodeCompletionResponse{Message: "looks fine"}, nil
}

func (f *fakeAPI) AssistantSpeechCompletion(ctx context.Context, req *codemaker.AssistantSpeechCompletionRequest) (*codemaker.AssistantSpeechCompletionResponse, error) {
	return nil, errors.New("not supported")
}

func (f *fakeAPI) ListModels(ctx context.Context, req *codemaker.ListModelsRequest) (*codemaker.ListModelsResponse, error) {
	return &codemaker.ListModelsResponse{Models: []codemaker.Model{{ID: "m1", Name: "Model One"}}}, nil
}

func newTestServer(t *testing.T, api *fakeAPI, files map[string]string) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	s, err := New(Config{Tools: AllTools, Root: root}, Deps{
		API:      api,
		Settings: processor.Settings{ExtendedContext: true, ContextMaxSize: 10},
	})
	require.NoError(t, err)
	return s, root
}

func TestGetToolSchemas(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(AllTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(AllTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"codemaker_process", "path"},
		{"codemaker_predict", "path"},
		{"codemaker_complete", "path"},
		{"codemaker_discover", "path"},
		{"codemaker_outline", "path"},
		{"codemaker_assistant", "message"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			} else if p.Required {
				t.Errorf("tool %s param %s is marked required but should not be", tt.tool, p.Name)
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}
}

func TestToolDefinitionsMatchRegistry(t *testing.T) {
	s, _ := newTestServer(t, &fakeAPI{}, nil)

	for _, name := range AllTools {
		require.NoError(t, s.registerTool(name))
	}
	assert.Error(t, s.registerTool("codemaker_unknown"))

	defs := map[string][]string{}
	for _, tool := range []struct {
		name string
		fn   func() []string
	}{
		{"codemaker_process", func() []string { return propertyNames(processTool().InputSchema.Properties) }},
		{"codemaker_predict", func() []string { return propertyNames(predictTool().InputSchema.Properties) }},
		{"codemaker_complete", func() []string { return propertyNames(completeTool().InputSchema.Properties) }},
		{"codemaker_discover", func() []string { return propertyNames(discoverTool().InputSchema.Properties) }},
		{"codemaker_outline", func() []string { return propertyNames(outlineTool().InputSchema.Properties) }},
		{"codemaker_models", func() []string { return propertyNames(modelsTool().InputSchema.Properties) }},
		{"codemaker_assistant", func() []string { return propertyNames(assistantTool().InputSchema.Properties) }},
	} {
		defs[tool.name] = tool.fn()
	}

	for name, got := range defs {
		var want []string
		for _, p := range toolSchemaRegistry[name].Parameters {
			want = append(want, p.Name)
		}
		sort.Strings(want)
		assert.Equal(t, want, got, name)
	}
}

func propertyNames(props map[string]any) []string {
	var names []string
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestAllToolsMatchesRegistry(t *testing.T) {
	registryNames := make([]string, 0, len(toolSchemaRegistry))
	for name := range toolSchemaRegistry {
		registryNames = append(registryNames, name)
	}
	sort.Strings(registryNames)

	allToolsCopy := append([]string(nil), AllTools...)
	sort.Strings(allToolsCopy)

	assert.Equal(t, registryNames, allToolsCopy)
}

func TestDefaultTools(t *testing.T) {
	s, err := New(Config{Root: t.TempDir()}, Deps{API: &fakeAPI{}})
	require.NoError(t, err)

	want := append([]string(nil), DefaultTools...)
	sort.Strings(want)
	assert.Equal(t, want, s.ListTools())
	assert.Len(t, s.GetToolSchemas(), len(DefaultTools))

	_, err = s.CallTool(context.Background(), "codemaker_models", nil)
	assert.ErrorContains(t, err, "unknown tool")
}

func TestCallToolProcess(t *testing.T) {
	api := &fakeAPI{}
	s, root := newTestServer(t, api, map[string]string{"a.py": "x = 1\n"})
	ctx := context.Background()

	result, err := s.CallTool(ctx, "codemaker_process", map[string]any{"path": "a.py", "dry_run": true})
	require.NoError(t, err)

	var dry output.RunOutput
	require.NoError(t, json.Unmarshal([]byte(result), &dry))
	assert.True(t, dry.DryRun)
	assert.Equal(t, 1, dry.Processed)
	require.Len(t, dry.Files, 1)
	assert.Contains(t, dry.Files[0].Diff, "+# generated")

	content, err := os.ReadFile(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(content))

	_, err = s.CallTool(ctx, "codemaker_process", map[string]any{"path": "a.py", "mode": "document"})
	require.NoError(t, err)
	content, err = os.ReadFile(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n# generated\n", string(content))
	assert.Equal(t, codemaker.ModeDocument, api.processed[len(api.processed)-1].Mode)
}

func TestCallToolProcessValidation(t *testing.T) {
	s, _ := newTestServer(t, &fakeAPI{}, map[string]string{"a.py": "x = 1\n"})
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing path", map[string]any{}, "path parameter is required"},
		{"bad mode", map[string]any{"path": "a.py", "mode": "poetry"}, "invalid mode"},
		{"bad modify", map[string]any{"path": "a.py", "modify": "append"}, "invalid modify"},
		{"edit without prompt", map[string]any{"path": "a.py", "mode": "edit-code"}, "prompt parameter is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CallTool(ctx, "codemaker_process", tt.args)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestCallToolComplete(t *testing.T) {
	api := &fakeAPI{completion: "suggestion"}
	s, _ := newTestServer(t, api, map[string]string{"main.go": "package main\n\nfunc main() {}\n"})
	ctx := context.Background()

	result, err := s.CallTool(ctx, "codemaker_complete", map[string]any{"path": "main.go", "line": float64(3), "column": float64(5)})
	require.NoError(t, err)

	var out output.CompletionOutput
	require.NoError(t, json.Unmarshal([]byte(result), &out))
	assert.Equal(t, 18, out.Offset)
	assert.Equal(t, "suggestion@18", out.Completion)

	_, err = s.CallTool(ctx, "codemaker_complete", map[string]any{"path": "main.go"})
	assert.Error(t, err)
}

func TestCallToolDiscoverOutlineModelsAssistant(t *testing.T) {
	api := &fakeAPI{}
	s, root := newTestServer(t, api, map[string]string{
		"a.py": "import b\n\ndef main():\n    pass\n",
		"b.py": "x = 1\n",
	})
	api.deps = map[string][]string{filepath.Join(root, "a.py"): {"b.py"}}
	ctx := context.Background()

	result, err := s.CallTool(ctx, "codemaker_discover", map[string]any{"path": "a.py"})
	require.NoError(t, err)
	var discovered output.DiscoverOutput
	require.NoError(t, json.Unmarshal([]byte(result), &discovered))
	require.Len(t, discovered.Contexts, 1)
	assert.Equal(t, filepath.Join(root, "b.py"), discovered.Contexts[0].Path)

	result, err = s.CallTool(ctx, "codemaker_outline", map[string]any{"path": "a.py"})
	require.NoError(t, err)
	var outline output.OutlineOutput
	require.NoError(t, json.Unmarshal([]byte(result), &outline))
	require.Len(t, outline.Symbols, 1)
	assert.Equal(t, "main", outline.Symbols[0].CodePath)

	result, err = s.CallTool(ctx, "codemaker_models", nil)
	require.NoError(t, err)
	assert.Contains(t, result, "Model One")

	result, err = s.CallTool(ctx, "codemaker_assistant", map[string]any{"message": "hello"})
	require.NoError(t, err)
	assert.Contains(t, result, "hi there")

	result, err = s.CallTool(ctx, "codemaker_assistant", map[string]any{"message": "review", "file": "a.py", "apply": true})
	require.NoError(t, err)
	var reply output.AssistantOutput
	require.NoError(t, json.Unmarshal([]byte(result), &reply))
	assert.Equal(t, "looks fine", reply.Message)
	assert.False(t, reply.Applied)
}
