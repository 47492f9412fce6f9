package rdf

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lower-cased terms on non-alphanumeric boundaries.
// The same tokenizer is applied to query text and to entity text so term
// matching stays consistent.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// DefaultLanguages is the set of literal language tags kept when building
// text representations. Untagged literals are always kept.
var DefaultLanguages = []string{"en", "pl"}

// LanguageAllowed reports whether a literal with the given language tag
// passes the filter. An empty tag always passes.
func LanguageAllowed(lang string, allowed []string) bool {
	if lang == "" {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(lang, a) {
			return true
		}
	}
	return false
}
