package processor

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/parser"
)

// CompletionRequest asks for an inline completion at a cursor.
type CompletionRequest struct {
	Path string
	// Source overrides the file content, e.g. an unsaved buffer.
	Source []byte
	// Offset is the cursor position in bytes from the start of the source.
	Offset int
	// Multiline overrides the configured completion behaviour when set.
	Multiline *bool
}

// OffsetLocator encodes a cursor offset as a code path.
func OffsetLocator(offset int) string {
	return "@" + strconv.Itoa(offset)
}

// Complete returns the suggested completion at the cursor. Any failure
// degrades to an empty suggestion; only cancellation is returned.
func (p *Processor) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	suggestion, err := p.complete(ctx, req)
	if err != nil {
		if isCancellation(ctx, err) {
			return "", ctx.Err()
		}
		if codemaker.IsUnauthorized(err) {
			p.log.Error("not authorized", "path", req.Path, "hint", codemaker.UnauthorizedHint)
		} else {
			p.log.Warn("completion failed", "path", req.Path, "error", err)
		}
		return "", nil
	}
	return suggestion, nil
}

func (p *Processor) complete(ctx context.Context, req CompletionRequest) (string, error) {
	source := req.Source
	if source == nil {
		content, err := p.files.Read(req.Path)
		if err != nil {
			return "", err
		}
		source = content
	}
	if req.Offset < 0 || req.Offset > len(source) {
		return "", fmt.Errorf("offset %d outside of source (%d bytes)", req.Offset, len(source))
	}

	lang, err := parser.LanguageFromPath(req.Path)
	if err != nil {
		return "", err
	}

	contextID, err := p.contextID(ctx, codemaker.ModeInlineCode, lang, source, req.Path)
	if err != nil {
		return "", err
	}

	opts := p.settings.options("", OffsetLocator(req.Offset), "", contextID)
	opts.AllowMultiLineAutocomplete = p.settings.MultilineCompletion
	if req.Multiline != nil {
		opts.AllowMultiLineAutocomplete = *req.Multiline
	}

	resp, err := p.api.Completion(ctx, &codemaker.CompletionRequest{
		Process: codemaker.Process{
			Mode:     codemaker.ModeInlineCode,
			Language: lang.APIName(),
			Input:    codemaker.Input{Source: string(source)},
			Path:     req.Path,
			Options:  opts,
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion %s: %w", req.Path, err)
	}
	return resp.Output.Source, nil
}

// OffsetAt converts a 1-based line and column to a byte offset in source.
// Columns count characters, not bytes; a column one past the end of the
// line addresses the line end.
func OffsetAt(source []byte, line, column int) (int, error) {
	if line < 1 || column < 1 {
		return 0, fmt.Errorf("line and column are 1-based, got %d:%d", line, column)
	}

	offset := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(source[offset:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d is past the end of the source", line)
		}
		offset += i + 1
	}

	end := len(source)
	if i := bytes.IndexByte(source[offset:], '\n'); i >= 0 {
		end = offset + i
	}

	for c := 1; c < column; c++ {
		if offset >= end {
			return 0, fmt.Errorf("column %d is past the end of line %d", column, line)
		}
		_, size := utf8.DecodeRune(source[offset:end])
		offset += size
	}
	return offset, nil
}
