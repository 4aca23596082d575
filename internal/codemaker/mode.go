package codemaker

import (
	"fmt"
	"strings"
)

// Mode selects what the server does with a submitted source file.
type Mode string

const (
	ModeCode       Mode = "CODE"
	ModeInlineCode Mode = "INLINE_CODE"
	ModeEditCode   Mode = "EDIT_CODE"
	ModeDocument   Mode = "DOCUMENT"
	ModeFixSyntax  Mode = "FIX_SYNTAX"
)

// Modes lists every processing mode in CLI spelling order.
var Modes = []Mode{ModeCode, ModeInlineCode, ModeEditCode, ModeDocument, ModeFixSyntax}

// ParseMode accepts both the wire spelling (EDIT_CODE) and the CLI
// spelling (edit-code).
func ParseMode(s string) (Mode, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch norm {
	case "DOCS", "DOC":
		return ModeDocument, nil
	}
	for _, m := range Modes {
		if string(m) == norm {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode: %q (expected code, inline-code, edit-code, document or fix-syntax)", s)
}

// SupportsExtendedContext reports whether requests in this mode may carry a
// registered context.
func (m Mode) SupportsExtendedContext() bool {
	return m == ModeCode || m == ModeEditCode || m == ModeInlineCode
}

// Flag returns the CLI spelling of the mode.
func (m Mode) Flag() string {
	return strings.ToLower(strings.ReplaceAll(string(m), "_", "-"))
}

// Modify describes how existing code at the target location is altered.
// The client never interprets it.
type Modify string

const (
	ModifyNone    Modify = "NONE"
	ModifyReplace Modify = "REPLACE"
	ModifyInsert  Modify = "INSERT"
)

// ParseModify parses none, replace or insert (case-insensitive).
func ParseModify(s string) (Modify, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return ModifyNone, nil
	case "REPLACE":
		return ModifyReplace, nil
	case "INSERT":
		return ModifyInsert, nil
	default:
		return "", fmt.Errorf("invalid modify policy: %q (expected none, replace or insert)", s)
	}
}

// Visibility limits documentation generation to a subset of declarations.
type Visibility string

const (
	VisibilityAll    Visibility = "ALL"
	VisibilityPublic Visibility = "PUBLIC"
)

// ParseVisibility parses all or public. The empty string means unset.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "ALL":
		return VisibilityAll, nil
	case "PUBLIC":
		return VisibilityPublic, nil
	default:
		return "", fmt.Errorf("invalid visibility: %q (expected all or public)", s)
	}
}
