package processor

import (
	"context"
	"fmt"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/journal"
	"github.com/codemakerai/codemaker-cli/internal/parser"
)

// Predict sends every supported file below path (or path itself) for
// predictive generation. Nothing is written back; traversal and failure
// handling are the same as Run.
func (p *Processor) Predict(ctx context.Context, path string) (*Summary, error) {
	req := Request{Path: path, Command: "predict"}
	return p.execute(ctx, req, func(ctx context.Context, r *run, file string) error {
		res, err := p.predictFile(ctx, file)
		return p.settle(ctx, r, res, err, r.single)
	})
}

func (p *Processor) predictFile(ctx context.Context, path string) (FileResult, error) {
	res := FileResult{Path: path}

	source, err := p.files.Read(path)
	if err != nil {
		res.Status = journal.StatusSkipped
		res.Err = err
		return res, nil
	}

	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return res, err
	}

	if _, err := p.api.Predict(ctx, &codemaker.PredictRequest{
		Process: codemaker.Process{
			Language: lang.APIName(),
			Input:    codemaker.Input{Source: string(source)},
			Path:     path,
			Options:  p.settings.options("", "", "", ""),
		},
	}); err != nil {
		return res, fmt.Errorf("predict %s: %w", path, err)
	}

	res.Status = journal.StatusProcessed
	return res, nil
}
