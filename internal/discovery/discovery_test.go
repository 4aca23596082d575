package discovery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/parser"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

var root = filepath.Join(string(filepath.Separator), "proj")

func p(parts ...string) string {
	return filepath.Join(append([]string{root}, parts...)...)
}

// graph is a dependency graph keyed by absolute path; values are
// references as the API would return them.
type graph map[string][]string

func (g graph) discover(calls *[]string) DiscoverFunc {
	return func(_ context.Context, path string) ([]string, error) {
		*calls = append(*calls, path)
		return g[path], nil
	}
}

func existing(paths ...string) ExistsFunc {
	set := make(map[string]bool, len(paths))
	for _, path := range paths {
		set[path] = true
	}
	return func(path string) bool { return set[path] }
}

func TestTraverseSingleDependency(t *testing.T) {
	var calls []string
	g := graph{
		p("a.py"): {"b.py"},
		p("b.py"): {},
	}

	tr, err := Traverse(context.Background(), p("a.py"), Bounds{}, g.discover(&calls), existing(p("a.py"), p("b.py")))
	require.NoError(t, err)

	assert.Equal(t, []string{p("b.py")}, tr.Paths)
	assert.Equal(t, 1, tr.Depth)
	assert.Equal(t, []string{p("a.py"), p("b.py")}, calls)
	assert.Equal(t, 2, tr.Calls)
}

func TestTraverseEmptyDiscovery(t *testing.T) {
	var calls []string
	g := graph{}

	tr, err := Traverse(context.Background(), p("a.py"), Bounds{}, g.discover(&calls), existing())
	require.NoError(t, err)

	assert.Empty(t, tr.Paths)
	assert.Equal(t, 0, tr.Depth)
	assert.Len(t, calls, 1)
}

func TestTraverseMissingPathsNotCounted(t *testing.T) {
	var calls []string
	refs := []string{"gone.py"}
	files := []string{p("a.py")}
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("dep%02d.py", i)
		refs = append(refs, name, "missing_"+name)
		files = append(files, p(name))
	}
	g := graph{p("a.py"): refs}

	tr, err := Traverse(context.Background(), p("a.py"), Bounds{}, g.discover(&calls), existing(files...))
	require.NoError(t, err)

	require.Len(t, tr.Paths, DefaultMaxSize)
	for i, path := range tr.Paths {
		assert.Equal(t, p(fmt.Sprintf("dep%02d.py", i)), path)
	}
}

func TestTraverseSizeCap(t *testing.T) {
	var calls []string
	var refs, files []string
	for i := 0; i < 25; i++ {
		name := fmt.Sprintf("f%02d.go", i)
		refs = append(refs, name)
		files = append(files, p(name))
	}
	g := graph{p("main.go"): refs}

	tr, err := Traverse(context.Background(), p("main.go"), Bounds{}, g.discover(&calls), existing(files...))
	require.NoError(t, err)

	assert.Len(t, tr.Paths, 10)
	// The seed plus the first nine; the tenth fills the cap and is not
	// discovered.
	assert.Equal(t, 10, tr.Calls)
}

func chain(n int) (graph, []string) {
	g := graph{}
	files := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := p(fmt.Sprintf("c%02d.ts", i))
		files = append(files, path)
		if i+1 < n {
			g[path] = []string{fmt.Sprintf("./c%02d.ts", i+1)}
		}
	}
	return g, files
}

func TestTraverseDepthCeiling(t *testing.T) {
	g, files := chain(40)

	tests := []struct {
		name      string
		bounds    Bounds
		wantPaths int
		wantDepth int
	}{
		{"default", Bounds{MaxSize: 100}, 16, 16},
		{"above ceiling", Bounds{MaxDepth: 64, MaxSize: 100}, 16, 16},
		{"configured", Bounds{MaxDepth: 3, MaxSize: 100}, 3, 3},
		{"one wave", Bounds{MaxDepth: 1, MaxSize: 100}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			tr, err := Traverse(context.Background(), files[0], tt.bounds, g.discover(&calls), existing(files...))
			require.NoError(t, err)

			assert.Len(t, tr.Paths, tt.wantPaths)
			assert.Equal(t, tt.wantDepth, tr.Depth)
			assert.Equal(t, files[1:tt.wantPaths+1], tr.Paths)
			// Files in the last allowed wave are never discovered.
			assert.Equal(t, tt.wantDepth, tr.Calls)
		})
	}
}

func TestTraverseWaveOrder(t *testing.T) {
	var calls []string
	g := graph{
		p("a.py"):         {"x.py", "y.py"},
		p("x.py"):         {"lib/x1.py"},
		p("y.py"):         {"lib/y1.py", "x.py"},
		p("lib", "x1.py"): {"../a.py"},
	}
	files := []string{p("a.py"), p("x.py"), p("y.py"), p("lib", "x1.py"), p("lib", "y1.py")}

	tr, err := Traverse(context.Background(), p("a.py"), Bounds{}, g.discover(&calls), existing(files...))
	require.NoError(t, err)

	assert.Equal(t, []string{p("x.py"), p("y.py"), p("lib", "x1.py"), p("lib", "y1.py")}, tr.Paths)
	assert.Equal(t, 2, tr.Depth)
}

func TestTraverseNormalizesAgainstOrigin(t *testing.T) {
	var calls []string
	abs := filepath.Join(string(filepath.Separator), "shared", "types.go")
	g := graph{
		p("cmd", "main.go"):     {"../internal/app.go", abs},
		p("internal", "app.go"): {"util/util.go"},
	}
	files := []string{p("internal", "app.go"), abs, p("internal", "util", "util.go")}

	tr, err := Traverse(context.Background(), p("cmd", "main.go"), Bounds{}, g.discover(&calls), existing(files...))
	require.NoError(t, err)

	assert.Equal(t, []string{p("internal", "app.go"), abs, p("internal", "util", "util.go")}, tr.Paths)
}

func TestTraverseDiscoveryError(t *testing.T) {
	boom := errors.New("boom")
	discover := func(_ context.Context, path string) ([]string, error) {
		if path == p("b.py") {
			return nil, boom
		}
		return []string{"b.py"}, nil
	}

	_, err := Traverse(context.Background(), p("a.py"), Bounds{}, discover, existing(p("b.py")))
	assert.ErrorIs(t, err, boom)
}

func TestTraverseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	discover := func(context.Context, string) ([]string, error) {
		called = true
		return nil, nil
	}

	_, err := Traverse(ctx, p("a.py"), Bounds{}, discover, existing())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// fakeAPI answers discovery from a graph and records requests.
type fakeAPI struct {
	mu       sync.Mutex
	graph    graph
	requires bool
	err      error
	requests []codemaker.Context
}

func (f *fakeAPI) DiscoverContext(ctx context.Context, req *codemaker.DiscoverContextRequest) (*codemaker.DiscoverContextResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req.Context)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := &codemaker.DiscoverContextResponse{RequiresProcessing: f.requires}
	for _, ref := range f.graph[req.Context.Path] {
		resp.Contexts = append(resp.Contexts, codemaker.RequiredContext{Path: ref})
	}
	return resp, nil
}

func TestResolverSingleDependency(t *testing.T) {
	files := workspace.NewMemory(map[string]string{
		p("a.py"): "import b\n",
		p("b.py"): "def helper(): pass\n",
	})
	api := &fakeAPI{graph: graph{p("a.py"): {"b.py"}}, requires: true}

	r := NewResolver(api, files, Bounds{}, nil)
	res, err := r.Trace(context.Background(), Seed{Path: p("a.py"), Language: parser.Python, Source: []byte("import b  # unsaved\n")})
	require.NoError(t, err)

	require.Len(t, res.Contexts, 1)
	assert.Equal(t, codemaker.Context{
		Language: "PYTHON",
		Input:    codemaker.Input{Source: "def helper(): pass\n"},
		Path:     p("b.py"),
	}, res.Contexts[0])
	assert.Equal(t, 1, res.Depth)
	assert.True(t, res.RequiresProcessing)

	// The seed is discovered from the caller's source, not the disk.
	require.Len(t, api.requests, 2)
	assert.Equal(t, "import b  # unsaved\n", api.requests[0].Input.Source)
	assert.Equal(t, "PYTHON", api.requests[0].Language)
}

func TestResolverSoftFails(t *testing.T) {
	files := workspace.NewMemory(map[string]string{p("a.go"): "package a\n"})

	for _, apiErr := range []error{errors.New("server exploded"), codemaker.ErrUnauthorized} {
		api := &fakeAPI{err: apiErr}
		r := NewResolver(api, files, Bounds{}, nil)

		contexts, err := r.Resolve(context.Background(), Seed{Path: p("a.go"), Language: parser.Go})
		assert.NoError(t, err)
		assert.Nil(t, contexts)
	}
}

func TestResolverPropagatesCancellation(t *testing.T) {
	files := workspace.NewMemory(map[string]string{p("a.go"): "package a\n"})
	r := NewResolver(&fakeAPI{}, files, Bounds{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, Seed{Path: p("a.go"), Language: parser.Go})
	assert.ErrorIs(t, err, context.Canceled)
}

// flakyFiles reports a file as existing but fails to read it.
type flakyFiles struct {
	*workspace.Memory
	broken string
}

func (f flakyFiles) Read(path string) ([]byte, error) {
	if path == f.broken {
		return nil, errors.New("permission denied")
	}
	return f.Memory.Read(path)
}

func (f flakyFiles) Exists(path string) bool {
	return path == f.broken || f.Memory.Exists(path)
}

func TestResolverDropsUnreadable(t *testing.T) {
	files := flakyFiles{
		Memory: workspace.NewMemory(map[string]string{
			p("Main.java"): "class Main {}",
			p("Util.java"): "class Util {}",
		}),
		broken: p("Locked.java"),
	}
	api := &fakeAPI{graph: graph{p("Main.java"): {"Locked.java", "Util.java"}}}

	r := NewResolver(api, files, Bounds{}, nil)
	res, err := r.Trace(context.Background(), Seed{Path: p("Main.java"), Language: parser.Java, Source: []byte("class Main {}")})
	require.NoError(t, err)

	require.Len(t, res.Contexts, 1)
	assert.Equal(t, p("Util.java"), res.Contexts[0].Path)
	assert.Equal(t, "JAVA", res.Contexts[0].Language)
}

func TestResolverLanguageFallback(t *testing.T) {
	files := workspace.NewMemory(map[string]string{
		p("view.tsx"):  "import './theme.tpl'",
		p("theme.tpl"): "{{ color }}",
	})
	api := &fakeAPI{graph: graph{p("view.tsx"): {"theme.tpl"}}}

	r := NewResolver(api, files, Bounds{}, nil)
	contexts, err := r.Resolve(context.Background(), Seed{Path: p("view.tsx"), Language: parser.TypeScript})
	require.NoError(t, err)

	require.Len(t, contexts, 1)
	assert.Equal(t, "TYPESCRIPT", contexts[0].Language)
}

func TestResolverDependencies(t *testing.T) {
	contents := map[string]string{p("app.py"): "import a, b"}
	var refs []string
	for i := 0; i < 14; i++ {
		name := fmt.Sprintf("m%02d.py", i)
		contents[p(name)] = "x = 1"
		refs = append(refs, name)
	}
	api := &fakeAPI{graph: graph{p("app.py"): refs, p("m00.py"): {"deep.py"}}}
	contents[p("deep.py")] = "y = 2"

	r := NewResolver(api, workspace.NewMemory(contents), Bounds{}, nil)
	deps, err := r.Dependencies(context.Background(), Seed{Path: p("app.py"), Language: parser.Python, Source: []byte("import a, b")})
	require.NoError(t, err)

	// Direct dependencies only, and more than the context size cap.
	assert.Len(t, deps, 14)
	assert.NotContains(t, deps, p("deep.py"))
	assert.Len(t, api.requests, 1)
}
