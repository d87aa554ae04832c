package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var legalNameCaser = cases.Title(language.BrazilianPortuguese)

// corporate suffixes kept upper-case when title-casing legal names
var upperSuffixes = map[string]bool{
	"ltda": true, "me": true, "epp": true, "sa": true, "s/a": true, "eireli": true,
}

// FormatLegalName normalizes a company legal name extracted from a fiscal
// document: collapses whitespace and title-cases words, keeping corporate
// suffixes upper-case.
func FormatLegalName(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	for i, word := range words {
		lower := strings.ToLower(word)
		if upperSuffixes[lower] {
			words[i] = strings.ToUpper(strings.TrimSuffix(lower, "."))
			continue
		}
		if len(word) <= 2 {
			words[i] = lower
			continue
		}
		words[i] = legalNameCaser.String(lower)
	}
	return strings.Join(words, " ")
}
