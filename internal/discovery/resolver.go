package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/parser"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// API is the part of the CodeMaker client the resolver calls.
type API interface {
	DiscoverContext(ctx context.Context, req *codemaker.DiscoverContextRequest) (*codemaker.DiscoverContextResponse, error)
}

// Seed is the file whose context is resolved. Source is the caller's view
// of the content, which may differ from what is on disk.
type Seed struct {
	Path     string
	Language parser.Language
	Source   []byte
}

// Resolution is a resolved context, ready for registration.
type Resolution struct {
	Contexts []codemaker.Context
	// Depth is the deepest discovery wave that contributed a file.
	Depth int
	// Calls is the number of discovery requests made.
	Calls int
	// RequiresProcessing is the seed's own discovery verdict.
	RequiresProcessing bool
}

// Resolver finds extended context for a file.
type Resolver struct {
	api    API
	files  workspace.Files
	bounds Bounds
	log    *slog.Logger
}

// NewResolver creates a resolver. A nil logger discards.
func NewResolver(api API, files workspace.Files, bounds Bounds, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{api: api, files: files, bounds: bounds, log: log}
}

// Resolve returns the context for seed, or nil when there is none. Any
// failure other than cancellation is logged and yields no context; the
// returned error is only ever the context's cancellation.
func (r *Resolver) Resolve(ctx context.Context, seed Seed) ([]codemaker.Context, error) {
	res, err := r.Trace(ctx, seed)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.log.Warn("context resolution failed", "path", seed.Path, "error", err)
		return nil, nil
	}
	return res.Contexts, nil
}

// Trace resolves the context for seed and reports how it got there. Unlike
// Resolve it returns every error.
func (r *Resolver) Trace(ctx context.Context, seed Seed) (*Resolution, error) {
	res := &Resolution{}

	t, err := Traverse(ctx, seed.Path, r.bounds, r.discoverFunc(seed, res), r.files.Exists)
	if err != nil {
		return nil, err
	}
	res.Depth = t.Depth
	res.Calls = t.Calls

	for _, path := range t.Paths {
		content, err := r.files.Read(path)
		if err != nil {
			r.log.Debug("dropping unreadable context file", "path", path, "error", err)
			continue
		}
		res.Contexts = append(res.Contexts, codemaker.Context{
			Language: languageOf(path, seed.Language).APIName(),
			Input:    codemaker.Input{Source: string(content)},
			Path:     path,
		})
	}

	r.log.Debug("context resolved",
		"path", seed.Path, "files", len(res.Contexts), "depth", res.Depth, "calls", res.Calls)
	return res, nil
}

// Dependencies returns the existing files seed directly depends on, in
// discovery order. Unlike Trace it follows a single wave and has no size
// cap.
func (r *Resolver) Dependencies(ctx context.Context, seed Seed) ([]string, error) {
	t, err := Traverse(ctx, seed.Path, Bounds{MaxDepth: 1, MaxSize: math.MaxInt}, r.discoverFunc(seed, nil), r.files.Exists)
	if err != nil {
		return nil, err
	}
	return t.Paths, nil
}

// discoverFunc asks the API for the references of a file. When res is set
// it receives the seed's RequiresProcessing verdict.
func (r *Resolver) discoverFunc(seed Seed, res *Resolution) DiscoverFunc {
	seedPath := filepath.Clean(seed.Path)
	return func(ctx context.Context, path string) ([]string, error) {
		c, ok := r.contextFor(seed, seedPath, path)
		if !ok {
			return nil, nil
		}
		resp, err := r.api.DiscoverContext(ctx, &codemaker.DiscoverContextRequest{Context: c})
		if err != nil {
			return nil, fmt.Errorf("discover context for %s: %w", path, err)
		}
		if res != nil && path == seedPath {
			res.RequiresProcessing = resp.RequiresProcessing
		}
		return resp.Paths(), nil
	}
}

// contextFor builds the discovery payload for path. The seed uses the
// caller's source; other files are read from the workspace. A file that
// cannot be read is not discovered and reports false.
func (r *Resolver) contextFor(seed Seed, seedPath, path string) (codemaker.Context, bool) {
	if path == seedPath {
		return codemaker.Context{
			Language: seed.Language.APIName(),
			Input:    codemaker.Input{Source: string(seed.Source)},
			Path:     seedPath,
		}, true
	}

	content, err := r.files.Read(path)
	if err != nil {
		r.log.Debug("skipping discovery of unreadable file", "path", path, "error", err)
		return codemaker.Context{}, false
	}
	return codemaker.Context{
		Language: languageOf(path, seed.Language).APIName(),
		Input:    codemaker.Input{Source: string(content)},
		Path:     path,
	}, true
}

// languageOf returns the language of path, falling back to the seed's for
// extensions the lookup table does not know (headers, templates).
func languageOf(path string, fallback parser.Language) parser.Language {
	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return fallback
	}
	return lang
}
