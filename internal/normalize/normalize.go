// Package normalize canonicalizes raw transaction descriptions before
// matching. Normalization is a pure function: deterministic, side-effect
// free, and total over arbitrary input including control characters and
// unicode text.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// Text is a normalized description: lowercase, punctuation-stripped, with
// runs of whitespace collapsed to single spaces. The empty value is the
// sentinel for input that normalized to nothing (empty, whitespace-only, or
// purely numeric/symbolic).
type Text string

// IsEmpty reports whether the text is the empty-normalized sentinel.
func (t Text) IsEmpty() bool {
	return t == ""
}

// String returns the normalized text.
func (t Text) String() string {
	return string(t)
}

// Tokens splits the normalized text into its space-separated tokens.
// The sentinel yields no tokens.
func (t Text) Tokens() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), " ")
}

// camelBoundary matches a lowercase letter directly followed by an uppercase
// one, so descriptions like "UberEats" split into separate tokens.
var camelBoundary = regexp.MustCompile(`(\p{Ll})(\p{Lu})`)

// Normalize canonicalizes a raw description:
//  1. camelCase runs are split on the case boundary
//  2. the text is lowercased using unicode case mapping
//  3. punctuation, currency symbols, and control characters become spaces
//  4. whitespace runs collapse to single spaces, leading/trailing trimmed
//
// Input that ends up empty, or whose every surviving token is purely
// numeric (an amount passed as a description), maps to the empty sentinel.
func Normalize(raw string) Text {
	s := camelBoundary.ReplaceAllString(raw, "$1 $2")
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	if len(tokens) == 0 {
		return ""
	}

	if allNumeric(tokens) {
		return ""
	}

	return Text(strings.Join(tokens, " "))
}

// allNumeric reports whether every token consists solely of digits.
func allNumeric(tokens []string) bool {
	for _, tok := range tokens {
		for _, r := range tok {
			if !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}
