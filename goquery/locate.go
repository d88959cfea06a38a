package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagecut"
	"golang.org/x/net/html"
)

// Candidate describes a scored content block.
type Candidate struct {
	// Score is the rune count of the block's visible text.
	Score int

	// LinkFraction is the share of that text inside anchors.
	LinkFraction float64

	// ByID is set when the block was selected through a content id.
	ByID bool
}

// Locate finds the main content block of doc.
//
// Content ids are tried first, in order; a present id wins outright.
// Otherwise every candidate tag is scored by visible text length and
// rejected when its link fraction exceeds rules.MaxLinkFraction. The
// highest score wins; on ties the first block in document order is kept.
// The final return value is false when nothing qualifies, unless
// rules.LinkHeavyFallback allows the best rejected block.
func Locate(doc *goquery.Document, rules *pagecut.Rules) (*goquery.Selection, Candidate, bool) {
	for _, id := range rules.ContentIDs {
		if id == "" {
			continue
		}
		sel := doc.Find("#" + cssEscape(id)).First()
		if sel.Length() > 0 {
			return sel, Candidate{Score: textLength(sel.Nodes[0]), ByID: true}, true
		}
	}

	if len(rules.CandidateTags) == 0 {
		return nil, Candidate{}, false
	}

	var (
		best, fallback         *html.Node
		bestCand, fallbackCand Candidate
	)
	doc.Find(strings.Join(rules.CandidateTags, ", ")).Each(func(_ int, sel *goquery.Selection) {
		n := sel.Nodes[0]
		cand := score(n)
		if cand.Score == 0 {
			return
		}
		if cand.LinkFraction > rules.MaxLinkFraction {
			if cand.Score > fallbackCand.Score {
				fallback, fallbackCand = n, cand
			}
			return
		}
		if cand.Score > bestCand.Score {
			best, bestCand = n, cand
		}
	})

	switch {
	case best != nil:
		return doc.FindNodes(best), bestCand, true
	case fallback != nil && rules.LinkHeavyFallback:
		return doc.FindNodes(fallback), fallbackCand, true
	}
	return nil, Candidate{}, false
}

// score computes the visible text length and link fraction of n.
func score(n *html.Node) Candidate {
	total := textLength(n)
	if total == 0 {
		return Candidate{}
	}
	links := 0
	walkElements(n, func(el *html.Node) bool {
		if el.Data == "a" {
			links += textLength(el)
			return false
		}
		return true
	})
	return Candidate{
		Score:        total,
		LinkFraction: float64(links) / float64(total),
	}
}

// textLength counts the runes of visible text under n, trimming each text
// node and skipping non-rendered subtrees.
func textLength(n *html.Node) int {
	count := 0
	walkText(n, func(t *html.Node) {
		count += utf8.RuneCountInString(strings.TrimSpace(t.Data))
	})
	return count
}

// visibleText returns the whitespace-trimmed text nodes under n joined
// without separators.
func visibleText(n *html.Node) string {
	var b strings.Builder
	walkText(n, func(t *html.Node) {
		b.WriteString(strings.TrimSpace(t.Data))
	})
	return b.String()
}

// hiddenTags never contribute visible text.
var hiddenTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

func walkText(n *html.Node, fn func(*html.Node)) {
	switch n.Type {
	case html.TextNode:
		fn(n)
		return
	case html.ElementNode:
		if hiddenTags[n.Data] {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, fn)
	}
}

// walkElements visits element descendants of n in document order. The
// visitor returns false to skip an element's children.
func walkElements(n *html.Node, visit func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if visit(c) {
			walkElements(c, visit)
		}
	}
}

// cssEscape escapes characters that would break an id selector.
func cssEscape(id string) string {
	var b strings.Builder
	for _, r := range id {
		if strings.ContainsRune(`!"#$%&'()*+,./:;<=>?@[\]^{|}~ `, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
