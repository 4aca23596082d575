package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammar describes how one language's syntax tree is outlined.
//
// scopes are declarations that contain other declarations (classes,
// namespaces, impl blocks); their names prefix the code paths of anything
// nested inside. callables are functions and methods. types are named
// declarations that are outlined but never act as a scope.
type grammar struct {
	language  func() *sitter.Language
	scopes    map[string]string
	callables map[string]string
	types     map[string]string
}

var grammars = map[Language]grammar{
	Go: {
		language: golang.GetLanguage,
		callables: map[string]string{
			"function_declaration": "function",
			"method_declaration":   "method",
		},
		types: map[string]string{
			"type_spec": "type",
		},
	},
	Python: {
		language: python.GetLanguage,
		scopes: map[string]string{
			"class_definition": "class",
		},
		callables: map[string]string{
			"function_definition": "function",
		},
	},
	Java: {
		language: java.GetLanguage,
		scopes: map[string]string{
			"class_declaration":     "class",
			"interface_declaration": "interface",
			"enum_declaration":      "enum",
			"record_declaration":    "record",
		},
		callables: map[string]string{
			"method_declaration":      "method",
			"constructor_declaration": "constructor",
		},
	},
	Kotlin: {
		language: kotlin.GetLanguage,
		scopes: map[string]string{
			"class_declaration":  "class",
			"object_declaration": "object",
		},
		callables: map[string]string{
			"function_declaration": "function",
		},
	},
	TypeScript: {
		language: typescript.GetLanguage,
		scopes: map[string]string{
			"class_declaration":          "class",
			"abstract_class_declaration": "class",
			"interface_declaration":      "interface",
		},
		callables: map[string]string{
			"function_declaration":           "function",
			"generator_function_declaration": "function",
			"method_definition":              "method",
		},
	},
	JavaScript: {
		language: javascript.GetLanguage,
		scopes: map[string]string{
			"class_declaration": "class",
		},
		callables: map[string]string{
			"function_declaration":           "function",
			"generator_function_declaration": "function",
			"method_definition":              "method",
		},
	},
	Rust: {
		language: rust.GetLanguage,
		scopes: map[string]string{
			"impl_item":  "impl",
			"trait_item": "trait",
			"mod_item":   "module",
		},
		callables: map[string]string{
			"function_item": "function",
		},
		types: map[string]string{
			"struct_item": "struct",
			"enum_item":   "enum",
		},
	},
	CSharp: {
		language: csharp.GetLanguage,
		scopes: map[string]string{
			"namespace_declaration": "namespace",
			"class_declaration":     "class",
			"struct_declaration":    "struct",
			"interface_declaration": "interface",
			"record_declaration":    "record",
		},
		callables: map[string]string{
			"method_declaration":      "method",
			"constructor_declaration": "constructor",
		},
	},
	C: {
		language: c.GetLanguage,
		callables: map[string]string{
			"function_definition": "function",
		},
		types: map[string]string{
			"struct_specifier": "struct",
		},
	},
	Cpp: {
		language: cpp.GetLanguage,
		scopes: map[string]string{
			"namespace_definition": "namespace",
			"class_specifier":      "class",
			"struct_specifier":     "struct",
		},
		callables: map[string]string{
			"function_definition": "function",
		},
	},
	PHP: {
		language: php.GetLanguage,
		scopes: map[string]string{
			"class_declaration":     "class",
			"interface_declaration": "interface",
			"trait_declaration":     "trait",
		},
		callables: map[string]string{
			"function_definition": "function",
			"method_declaration":  "method",
		},
	},
}
