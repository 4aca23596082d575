package processor

import (
	"context"
	"fmt"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/parser"
)

// Assistant sends a chat message and returns the reply.
func (p *Processor) Assistant(ctx context.Context, message string) (string, error) {
	resp, err := p.api.AssistantCompletion(ctx, &codemaker.AssistantCompletionRequest{
		Message: message,
		Options: p.assistantOptions(),
	})
	if err != nil {
		return "", p.logAPIError(ctx, "assistant", err)
	}
	return resp.Message, nil
}

// AssistantReply is the answer to a message about a file.
type AssistantReply struct {
	Message string
	// Source is the rewritten file content, empty when the assistant
	// proposed no change.
	Source  string
	Applied bool
}

// AssistantCode sends a message together with the content of path. When
// apply is set and the assistant returns new content, the file is
// rewritten.
func (p *Processor) AssistantCode(ctx context.Context, path, message string, apply bool) (*AssistantReply, error) {
	source, err := p.files.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	lang, err := parser.LanguageFromPath(path)
	if err != nil {
		return nil, err
	}

	resp, err := p.api.AssistantCodeCompletion(ctx, &codemaker.AssistantCodeCompletionRequest{
		Message:  message,
		Language: lang.APIName(),
		Input:    codemaker.Input{Source: string(source)},
		Options:  p.assistantOptions(),
	})
	if err != nil {
		return nil, p.logAPIError(ctx, "assistant", err)
	}

	reply := &AssistantReply{Message: resp.Message, Source: resp.Output.Source}
	if apply && reply.Source != "" && reply.Source != string(source) {
		if err := p.files.Write(path, []byte(reply.Source)); err != nil {
			return reply, fmt.Errorf("write %s: %w", path, err)
		}
		reply.Applied = true
	}
	return reply, nil
}

// AssistantSpeech sends a message and returns the reply with its spoken
// audio.
func (p *Processor) AssistantSpeech(ctx context.Context, message string) (string, []byte, error) {
	resp, err := p.api.AssistantSpeechCompletion(ctx, &codemaker.AssistantSpeechCompletionRequest{
		Message: message,
		Options: p.assistantOptions(),
	})
	if err != nil {
		return "", nil, p.logAPIError(ctx, "assistant", err)
	}
	return resp.Message, resp.Audio.Data, nil
}

func (p *Processor) assistantOptions() *codemaker.Options {
	return &codemaker.Options{
		LanguageCode: p.settings.OutputLanguage,
		Model:        p.settings.Model,
	}
}

// logAPIError logs an authorization failure with its hint and returns err.
// Cancellation passes through unlogged.
func (p *Processor) logAPIError(ctx context.Context, op string, err error) error {
	if isCancellation(ctx, err) {
		return err
	}
	if codemaker.IsUnauthorized(err) {
		p.log.Error("not authorized", "op", op, "hint", codemaker.UnauthorizedHint)
	}
	return fmt.Errorf("%s: %w", op, err)
}
