// Package coordinator implements the unique-list generation coordinator:
// a bounded multi-phase state machine that drives an external generative
// model toward N distinct named items for a topic, tolerating high and
// variable duplicate rates while guaranteeing termination.
package coordinator

import (
	"strings"
	"unicode"
)

// DefaultStripPunctuation is the punctuation removed during normalization.
// Interior hyphens and apostrophes are kept ("spider-man" and "spiderman"
// are different items; "O'Brien" keeps its apostrophe).
const DefaultStripPunctuation = ".,;:!?\"()[]{}*_`~"

// Normalizer produces the canonical comparison key for a raw candidate
// string. Two raw strings a human would consider the same item must
// normalize identically; everything downstream trusts this.
type Normalizer struct {
	strip map[rune]bool
}

// NewNormalizer creates a Normalizer that strips the given punctuation set.
// An empty set falls back to DefaultStripPunctuation.
func NewNormalizer(punctuation string) *Normalizer {
	if punctuation == "" {
		punctuation = DefaultStripPunctuation
	}
	strip := make(map[rune]bool, len(punctuation))
	for _, r := range punctuation {
		strip[r] = true
	}
	return &Normalizer{strip: strip}
}

// Normalize lowercases, trims surrounding whitespace, collapses internal
// whitespace runs to a single space, and strips the configured punctuation.
// Total: any input yields a key, unparseable input simply normalizes to
// itself after cleanup.
func (n *Normalizer) Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if n.strip[r] {
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
