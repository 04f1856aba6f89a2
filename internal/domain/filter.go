package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s with case and diacritics removed so that two strings that
// differ only in letter case or accents compare equal. "Café" and "CAFE" both
// fold to "cafe".
//
// Case folding runs first because some folds introduce combining marks
// (U+0130 folds to "i" followed by U+0307), which the mark removal then strips.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	folded := cases.Fold().String(s)

	// Transformers carry state, so the chain is built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(stripMarks, folded)
	if err != nil {
		return folded
	}

	return out
}

// Filter returns the quotes whose text, author or title contains pattern,
// ignoring case and diacritics. Relative order is preserved.
//
// An empty pattern returns quotes unchanged. The pattern is always a literal
// substring: wildcard and regular expression characters have no meaning.
func Filter(quotes []Quote, pattern string) []Quote {
	if pattern == "" {
		return quotes
	}

	needle := Fold(pattern)
	out := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if q.matches(needle) {
			out = append(out, q)
		}
	}

	return out
}

// matches expects an already folded needle.
func (q Quote) matches(needle string) bool {
	for _, field := range [...]*string{q.Text, q.Author, q.Title} {
		if strings.Contains(Fold(deref(field)), needle) {
			return true
		}
	}

	return false
}
