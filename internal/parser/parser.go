// Package parser maps source files to languages and parses them with
// tree-sitter.
//
// Language detection is a lookup table keyed by file extension. Unknown
// extensions produce an UnsupportedLanguageError rather than an empty value.
// Parsing is only needed for outlines (function and class code paths) and
// local syntax checks, so a Parser is created on demand and closed by the
// caller.
package parser

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language represents a supported programming language.
type Language string

const (
	// Go represents the Go programming language.
	Go Language = "go"
	// TypeScript represents the TypeScript programming language.
	TypeScript Language = "typescript"
	// JavaScript represents the JavaScript programming language.
	JavaScript Language = "javascript"
	// Python represents the Python programming language.
	Python Language = "python"
	// Rust represents the Rust programming language.
	Rust Language = "rust"
	// Java represents the Java programming language.
	Java Language = "java"
	// CSharp represents the C# programming language.
	CSharp Language = "csharp"
	// C represents the C programming language.
	C Language = "c"
	// Cpp represents the C++ programming language.
	Cpp Language = "cpp"
	// PHP represents the PHP programming language.
	PHP Language = "php"
	// Kotlin represents the Kotlin programming language.
	Kotlin Language = "kotlin"
)

// extensions is the lookup table from file extension to language.
var extensions = map[string]Language{
	".go":   Go,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".py":   Python,
	".rs":   Rust,
	".java": Java,
	".cs":   CSharp,
	".c":    C,
	".h":    C,
	".cpp":  Cpp,
	".cc":   Cpp,
	".cxx":  Cpp,
	".hpp":  Cpp,
	".hh":   Cpp,
	".hxx":  Cpp,
	".php":  PHP,
	".kt":   Kotlin,
	".kts":  Kotlin,
}

// apiNames maps languages to the identifiers the API expects.
var apiNames = map[Language]string{
	Go:         "GO",
	TypeScript: "TYPESCRIPT",
	JavaScript: "JAVASCRIPT",
	Python:     "PYTHON",
	Rust:       "RUST",
	Java:       "JAVA",
	CSharp:     "CSHARP",
	C:          "C",
	Cpp:        "CPP",
	PHP:        "PHP",
	Kotlin:     "KOTLIN",
}

// APIName returns the language identifier used on the wire.
func (l Language) APIName() string {
	return apiNames[l]
}

// LanguageFromExtension returns the language for a file extension such as
// ".py". Matching is case-insensitive.
func LanguageFromExtension(ext string) (Language, error) {
	if lang, ok := extensions[strings.ToLower(ext)]; ok {
		return lang, nil
	}
	return "", &UnsupportedLanguageError{Extension: ext}
}

// LanguageFromPath returns the language of the file at path.
func LanguageFromPath(path string) (Language, error) {
	ext := filepath.Ext(path)
	if lang, ok := extensions[strings.ToLower(ext)]; ok {
		return lang, nil
	}
	return "", &UnsupportedLanguageError{Extension: ext, Path: path}
}

// IsSupported reports whether path has a supported extension.
func IsSupported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns all supported file extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parser wraps tree-sitter for one language.
type Parser struct {
	parser *sitter.Parser
	lang   Language
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the AST.
	Root *sitter.Node
	// Source is the original source code that was parsed.
	Source []byte
	// Language is the programming language of the source.
	Language Language
}

// NewParser creates a parser for the given language.
// Returns an UnsupportedLanguageError if no grammar is available.
func NewParser(lang Language) (*Parser, error) {
	g, ok := grammars[lang]
	if !ok {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	p := sitter.NewParser()
	p.SetLanguage(g.language())

	return &Parser{parser: p, lang: lang}, nil
}

// Parse parses source code and returns the AST.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Language: p.lang, Message: err.Error()}
	}

	return &ParseResult{
		Tree:     tree,
		Root:     tree.RootNode(),
		Source:   source,
		Language: p.lang,
	}, nil
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors returns true if the parse tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// HasSyntaxErrors parses source and reports whether it contains syntax
// errors.
func HasSyntaxErrors(ctx context.Context, lang Language, source []byte) (bool, error) {
	p, err := NewParser(lang)
	if err != nil {
		return false, err
	}
	defer p.Close()

	result, err := p.Parse(ctx, source)
	if err != nil {
		return false, err
	}
	defer result.Close()
	return result.HasErrors(), nil
}
