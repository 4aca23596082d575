package processor

import (
	"context"
	"fmt"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/discovery"
	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/parser"
)

// processFile runs one file through the API in mode and writes the result
// back. A file that cannot be read is skipped, not failed.
func (p *Processor) processFile(ctx context.Context, path string, req Request, mode codemaker.Mode) (FileResult, error) {
	res := FileResult{Path: path, Mode: mode}

	source, err := p.files.Read(path)
	if err != nil {
		res.Status = journal.StatusSkipped
		res.Err = err
		return res, nil
	}
	res.beforeHash = journal.HashContent(source)

	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return res, err
	}

	contextID, err := p.contextID(ctx, mode, lang, source, path)
	if err != nil {
		return res, err
	}
	res.ContextID = contextID

	resp, err := p.api.Process(ctx, &codemaker.ProcessRequest{
		Process: codemaker.Process{
			Mode:     mode,
			Language: lang.APIName(),
			Input:    codemaker.Input{Source: string(source)},
			Path:     path,
			Options:  p.settings.options(req.Modify, req.CodePath, req.Prompt, contextID),
		},
	})
	if err != nil {
		return res, fmt.Errorf("process %s: %w", path, err)
	}

	if resp.Output.Source == "" && len(source) > 0 {
		return res, fmt.Errorf("process %s: %w", path, ErrEmptyOutput)
	}

	output := []byte(resp.Output.Source)
	if err := p.files.Write(path, output); err != nil {
		return res, fmt.Errorf("write %s: %w", path, err)
	}

	res.Status = journal.StatusProcessed
	res.afterHash = journal.HashContent(output)
	return res, nil
}

// contextID resolves and registers extended context for a file when the
// mode allows it and the feature is on. Failures other than cancellation
// yield no context.
func (p *Processor) contextID(ctx context.Context, mode codemaker.Mode, lang parser.Language, source []byte, path string) (string, error) {
	if !mode.SupportsExtendedContext() || !p.settings.ExtendedContext {
		return "", nil
	}

	contexts, err := p.resolver.Resolve(ctx, discovery.Seed{Path: path, Language: lang, Source: source})
	if err != nil {
		return "", err
	}
	if len(contexts) == 0 {
		return "", nil
	}

	id, err := p.register(ctx, contexts)
	if err != nil {
		if isCancellation(ctx, err) {
			return "", ctx.Err()
		}
		p.log.Warn("context registration failed", "path", path, "error", err)
		return "", nil
	}
	return id, nil
}

// register creates a server-side context and attaches contexts to it.
func (p *Processor) register(ctx context.Context, contexts []codemaker.Context) (string, error) {
	created, err := p.api.CreateContext(ctx, &codemaker.CreateContextRequest{})
	if err != nil {
		return "", fmt.Errorf("create context: %w", err)
	}
	if _, err := p.api.RegisterContext(ctx, &codemaker.RegisterContextRequest{
		ID:       created.ID,
		Contexts: contexts,
	}); err != nil {
		return "", fmt.Errorf("register context %s: %w", created.ID, err)
	}
	return created.ID, nil
}

// processSourceGraph regenerates the direct dependencies of path in code
// mode, each recursively in the same way, and then processes path itself
// in mode. Every file is handled at most once per mode and run, and
// recursion stops at discovery.MaxDepth levels.
func (p *Processor) processSourceGraph(ctx context.Context, r *run, path string, mode codemaker.Mode, depth int) error {
	key := visitKey{path: path, mode: mode}
	if r.visited[key] {
		return nil
	}
	r.visited[key] = true

	if depth < discovery.MaxDepth {
		deps, err := p.dependencies(ctx, path)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if err := p.processSourceGraph(ctx, r, dep, codemaker.ModeCode, depth+1); err != nil {
				return err
			}
		}
	}

	req := r.req
	if depth > 0 {
		req = dependencyRequest(path, r.req.Command)
	}
	res, err := p.processFile(ctx, path, req, mode)
	return p.settle(ctx, r, res, err, depth == 0 && r.single)
}

// dependencies returns the files path directly depends on. Discovery
// failures other than cancellation mean no dependencies.
func (p *Processor) dependencies(ctx context.Context, path string) ([]string, error) {
	source, err := p.files.Read(path)
	if err != nil {
		return nil, nil
	}
	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return nil, nil
	}

	deps, err := p.resolver.Dependencies(ctx, discovery.Seed{Path: path, Language: lang, Source: source})
	if err != nil {
		if isCancellation(ctx, err) {
			return nil, ctx.Err()
		}
		p.log.Warn("dependency discovery failed", "path", path, "error", err)
		return nil, nil
	}
	return deps, nil
}

// dependencyRequest is the request a dependency is regenerated with: whole
// file, no prompt, nothing existing replaced.
func dependencyRequest(path, command string) Request {
	return Request{
		Path:    path,
		Mode:    codemaker.ModeCode,
		Modify:  codemaker.ModifyNone,
		Command: command,
	}
}
