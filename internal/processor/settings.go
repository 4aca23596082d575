package processor

import (
	"fmt"

	"github.com/codemakerai/codemaker-cli/internal/codemaker"
	"github.com/codemakerai/codemaker-cli/internal/config"
)

// Settings are the read-only configuration values a run consumes.
type Settings struct {
	ExtendedContext bool
	ContextDepth    int
	ContextMaxSize  int

	OutputLanguage     codemaker.LanguageCode
	Model              string
	Indent             int
	MinimalLinesLength int
	Visibility         codemaker.Visibility
	DetectSyntaxErrors bool

	MultilineCompletion bool

	Exclude     []string
	AutoExclude bool
}

// SettingsFromConfig extracts run settings from a loaded configuration.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	lang, err := codemaker.ParseLanguageCode(cfg.Generation.OutputLanguage)
	if err != nil {
		return Settings{}, fmt.Errorf("output language: %w", err)
	}
	visibility, err := codemaker.ParseVisibility(cfg.Generation.Visibility)
	if err != nil {
		return Settings{}, fmt.Errorf("visibility: %w", err)
	}

	return Settings{
		ExtendedContext:     cfg.ExtendedContextEnabled(),
		ContextDepth:        cfg.EffectiveContextDepth(),
		ContextMaxSize:      cfg.Context.MaxSize,
		OutputLanguage:      lang,
		Model:               cfg.API.Model,
		Indent:              cfg.Generation.Indent,
		MinimalLinesLength:  cfg.Generation.MinimalLinesLength,
		Visibility:          visibility,
		DetectSyntaxErrors:  cfg.Generation.DetectSyntaxErrors,
		MultilineCompletion: cfg.Completion.Multiline,
		Exclude:             cfg.Scan.Exclude,
		AutoExclude:         cfg.AutoExcludeEnabled(),
	}, nil
}

// options builds the request options shared by every generation call.
func (s Settings) options(modify codemaker.Modify, codePath, prompt, contextID string) *codemaker.Options {
	opts := &codemaker.Options{
		Modify:             modify,
		CodePath:           codePath,
		Prompt:             prompt,
		DetectSyntaxErrors: s.DetectSyntaxErrors,
		LanguageCode:       s.OutputLanguage,
		ContextID:          contextID,
		Model:              s.Model,
		Visibility:         s.Visibility,
	}
	if s.Indent > 0 {
		indent := s.Indent
		opts.OverrideIndent = &indent
	}
	if s.MinimalLinesLength > 0 {
		minLines := s.MinimalLinesLength
		opts.MinimalLinesLength = &minLines
	}
	return opts
}
