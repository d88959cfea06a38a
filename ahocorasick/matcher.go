// Package ahocorasick implements warning-phrase detection with a
// multi-pattern Aho-Corasick automaton.
package ahocorasick

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/fwojciec/pagecut"
	"golang.org/x/text/unicode/norm"
)

// Ensure Matcher implements pagecut.PhraseMatcher at compile time.
var _ pagecut.PhraseMatcher = (*Matcher)(nil)

// Matcher reports whether text mentions any of a fixed set of phrases.
// Phrases and text are NFKC-normalized and lower-cased before matching,
// so full-width and half-width forms of the same phrase are equivalent.
// A Matcher is safe for concurrent use.
type Matcher struct {
	m *ahocorasick.Matcher
}

// NewMatcher builds a Matcher for phrases. Empty phrases are ignored.
func NewMatcher(phrases []string) *Matcher {
	folded := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = fold(p); p != "" {
			folded = append(folded, p)
		}
	}
	if len(folded) == 0 {
		return &Matcher{}
	}
	return &Matcher{m: ahocorasick.NewStringMatcher(folded)}
}

// Contains reports whether text contains at least one phrase.
func (m *Matcher) Contains(text string) bool {
	if m.m == nil || text == "" {
		return false
	}
	return len(m.m.Match([]byte(fold(text)))) > 0
}

func fold(s string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
}
