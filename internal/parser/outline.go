package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Symbol is a named declaration found in a source file.
type Symbol struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`
	// CodePath is the dotted path from the outermost scope, e.g.
	// "Greeter.greet". It is the locator the API uses to target one
	// declaration inside a file.
	CodePath  string `yaml:"code_path" json:"code_path"`
	Line      int    `yaml:"line" json:"line"`
	EndLine   int    `yaml:"end_line" json:"end_line"`
	StartByte int    `yaml:"-" json:"-"`
	EndByte   int    `yaml:"-" json:"-"`
}

// Outline parses source and returns its functions, methods and types in
// document order.
func Outline(ctx context.Context, lang Language, source []byte) ([]Symbol, error) {
	p, err := NewParser(lang)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	result, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	w := &outliner{g: grammars[lang], lang: lang, src: source}
	w.walk(result.Root, nil)
	return w.symbols, nil
}

// FindSymbol looks up a symbol by code path, falling back to a unique
// match on the bare name.
func FindSymbol(symbols []Symbol, query string) (*Symbol, error) {
	var byName []*Symbol
	for i := range symbols {
		s := &symbols[i]
		if s.CodePath == query {
			return s, nil
		}
		if s.Name == query {
			byName = append(byName, s)
		}
	}

	switch len(byName) {
	case 0:
		return nil, fmt.Errorf("no declaration named %q", query)
	case 1:
		return byName[0], nil
	default:
		paths := make([]string, 0, len(byName))
		for _, s := range byName {
			paths = append(paths, s.CodePath)
		}
		return nil, fmt.Errorf("%q is ambiguous, use one of: %s", query, strings.Join(paths, ", "))
	}
}

type outliner struct {
	g       grammar
	lang    Language
	src     []byte
	symbols []Symbol
}

func (w *outliner) walk(node *sitter.Node, scope []string) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	childScope := scope

	if kind, ok := w.g.scopes[nodeType]; ok && w.hasBody(node) {
		if name := w.name(node); name != "" {
			w.add(node, name, kind, scope)
			childScope = appendScope(scope, name)
		}
	} else if kind, ok := w.g.callables[nodeType]; ok {
		name := w.name(node)
		if w.lang == Go && nodeType == "method_declaration" {
			if recv := w.receiverType(node); recv != "" {
				scope = []string{recv}
			}
		}
		if name != "" {
			if kind == "function" && len(scope) > 0 {
				kind = "method"
			}
			w.add(node, name, kind, scope)
			childScope = appendScope(scope, name)
		}
	} else if kind, ok := w.g.types[nodeType]; ok && w.hasBody(node) {
		if name := w.name(node); name != "" {
			w.add(node, name, kind, scope)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.walk(node.NamedChild(i), childScope)
	}
}

func (w *outliner) add(node *sitter.Node, name, kind string, scope []string) {
	w.symbols = append(w.symbols, Symbol{
		Name:      name,
		Kind:      kind,
		CodePath:  strings.Join(appendScope(scope, name), "."),
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
	})
}

// hasBody filters out forward declarations such as `struct foo;` in C.
func (w *outliner) hasBody(node *sitter.Node) bool {
	switch node.Type() {
	case "struct_specifier", "class_specifier":
		return node.ChildByFieldName("body") != nil
	}
	return true
}

// name extracts a declaration name. Grammars disagree on where it lives:
// most use a "name" field, C-family functions nest it in declarators, Rust
// impl blocks use "type", and Kotlin has no field names at all.
func (w *outliner) name(node *sitter.Node) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(w.src)
	}
	if d := node.ChildByFieldName("declarator"); d != nil {
		return w.declaratorName(d)
	}
	if t := node.ChildByFieldName("type"); t != nil && node.Type() == "impl_item" {
		return t.Content(w.src)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "simple_identifier", "type_identifier", "identifier", "name":
			return child.Content(w.src)
		}
	}
	return ""
}

func (w *outliner) declaratorName(node *sitter.Node) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name":
			return node.Content(w.src)
		}
		next := node.ChildByFieldName("declarator")
		if next == nil {
			return ""
		}
		node = next
	}
	return ""
}

// receiverType returns the receiver's type name of a Go method, without
// pointer or type parameters.
func (w *outliner) receiverType(node *sitter.Node) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var found string
	var visit func(n *sitter.Node) bool
	visit = func(n *sitter.Node) bool {
		if n.Type() == "type_identifier" {
			found = n.Content(w.src)
			return true
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if visit(n.NamedChild(i)) {
				return true
			}
		}
		return false
	}
	visit(recv)
	return found
}

func appendScope(scope []string, name string) []string {
	out := make([]string, 0, len(scope)+1)
	out = append(out, scope...)
	return append(out, name)
}
