package parser

import "fmt"

// ParseError is returned when tree-sitter gives up on a source, typically
// because the context was cancelled.
type ParseError struct {
	Language Language
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Language, e.Message)
}

// UnsupportedLanguageError is returned when a file extension or language
// has no entry in the lookup table.
type UnsupportedLanguageError struct {
	Language  string
	Extension string
	Path      string
}

// Error implements the error interface.
func (e *UnsupportedLanguageError) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("unsupported language for %s", e.Path)
	case e.Extension != "":
		return fmt.Sprintf("unsupported file extension: %q", e.Extension)
	default:
		return fmt.Sprintf("unsupported language: %s", e.Language)
	}
}
