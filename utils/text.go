package utils

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases text and composes it to NFC so that decomposed
// Arabic hamza forms compare equal to the composed forms in the tables.
// A Caser is not safe for concurrent use, so one is built per call.
func Normalize(text string) string {
	lowered := cases.Lower(language.Und).String(text)
	return norm.NFC.String(lowered)
}
