package codemaker

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// LanguageCode is the natural language used for generated comments and
// documentation.
type LanguageCode string

const (
	LanguageEN LanguageCode = "EN"
	LanguageES LanguageCode = "ES"
	LanguagePT LanguageCode = "PT"
	LanguageJA LanguageCode = "JA"
	LanguageVI LanguageCode = "VI"
	LanguageTR LanguageCode = "TR"
	LanguageKO LanguageCode = "KO"
	LanguageDE LanguageCode = "DE"
	LanguageFR LanguageCode = "FR"
	LanguagePL LanguageCode = "PL"
	LanguageZH LanguageCode = "ZH"
)

// LanguageCodes lists the output languages the service accepts.
var LanguageCodes = []LanguageCode{
	LanguageEN, LanguageES, LanguagePT, LanguageJA, LanguageVI, LanguageTR,
	LanguageKO, LanguageDE, LanguageFR, LanguagePL, LanguageZH,
}

// ParseLanguageCode normalizes a BCP 47 tag ("en-US", "pt_BR", "zh-Hant")
// to one of the supported output languages. The empty string is unset.
func ParseLanguageCode(s string) (LanguageCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid output language %q: %w", s, err)
	}
	base, _ := tag.Base()

	code := LanguageCode(strings.ToUpper(base.String()))
	for _, supported := range LanguageCodes {
		if supported == code {
			return code, nil
		}
	}
	return "", fmt.Errorf("unsupported output language %q (supported: %v)", s, LanguageCodes)
}
