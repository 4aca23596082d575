package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codemakerai/codemaker-cli/internal/discovery"
	"github.com/codemakerai/codemaker-cli/internal/output"
	"github.com/codemakerai/codemaker-cli/internal/parser"
	"github.com/codemakerai/codemaker-cli/internal/workspace"
)

// Report renders the summary for output. When dry is set, each file carries
// the diff that would have been written.
func (s *Summary) Report(dry *workspace.DryRun) *output.RunOutput {
	out := &output.RunOutput{
		Path:      s.Path,
		Mode:      s.Mode.Flag(),
		DryRun:    dry != nil,
		Processed: s.Processed,
		Failed:    s.Failed,
		Skipped:   s.Skipped,
		Duration:  s.Duration.Round(time.Millisecond).String(),
	}
	for _, f := range s.Files {
		entry := output.FileResult{
			Path:      f.Path,
			Status:    string(f.Status),
			ContextID: f.ContextID,
		}
		if f.Err != nil {
			entry.Error = f.Err.Error()
		}
		if dry != nil {
			entry.Diff = dry.Diff(f.Path)
		}
		out.Files = append(out.Files, entry)
	}
	return out
}

// Discovered is the context resolved for one file.
type Discovered struct {
	Path       string
	Language   parser.Language
	Resolution *discovery.Resolution
}

// Discover resolves the extended context of path without registering it.
func (p *Processor) Discover(ctx context.Context, path string) (*Discovered, error) {
	source, err := p.files.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return nil, err
	}
	res, err := p.resolver.Trace(ctx, discovery.Seed{Path: path, Language: lang, Source: source})
	if err != nil {
		return nil, err
	}
	return &Discovered{Path: path, Language: lang, Resolution: res}, nil
}

// Report renders the discovery for output.
func (d *Discovered) Report() *output.DiscoverOutput {
	out := &output.DiscoverOutput{
		File:     d.Path,
		Language: d.Language.APIName(),
		Depth:    d.Resolution.Depth,
		Contexts: []output.DiscoveredContext{},
	}
	for _, c := range d.Resolution.Contexts {
		out.Contexts = append(out.Contexts, output.DiscoveredContext{
			Path:     c.Path,
			Language: c.Language,
			Bytes:    len(c.Input.Source),
		})
	}
	return out
}

// Outline lists the declarations of path.
func (p *Processor) Outline(ctx context.Context, path string) (*output.OutlineOutput, error) {
	source, err := p.files.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return nil, err
	}
	symbols, err := parser.Outline(ctx, lang, source)
	if err != nil {
		return nil, err
	}

	out := &output.OutlineOutput{File: path, Language: lang.APIName(), Symbols: []output.SymbolEntry{}}
	for _, s := range symbols {
		out.Symbols = append(out.Symbols, output.SymbolEntry{
			CodePath: s.CodePath,
			Kind:     s.Kind,
			Lines:    fmt.Sprintf("%d-%d", s.Line, s.EndLine),
		})
	}
	return out, nil
}

// ResolveCodePath returns the code path of the declaration named entity in
// path, matched by code path first and then by bare name.
func (p *Processor) ResolveCodePath(ctx context.Context, path, entity string) (string, error) {
	source, err := p.files.Read(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return "", err
	}
	symbols, err := parser.Outline(ctx, lang, source)
	if err != nil {
		return "", err
	}
	sym, err := parser.FindSymbol(symbols, entity)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return sym.CodePath, nil
}

// HasSyntaxErrors parses path locally and reports whether it contains
// syntax errors. Files in unsupported languages report none.
func (p *Processor) HasSyntaxErrors(ctx context.Context, path string) (bool, error) {
	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return false, nil
	}
	source, err := p.files.Read(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	broken, err := parser.HasSyntaxErrors(ctx, lang, source)
	var unsupported *parser.UnsupportedLanguageError
	if errors.As(err, &unsupported) {
		return false, nil
	}
	return broken, err
}
