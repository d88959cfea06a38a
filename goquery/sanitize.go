package goquery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/pagecut"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlankClass marks placeholder elements that stand in for removed content
// to keep paragraph spacing.
const BlankClass = "pagecut-blank"

// SanitizeReport counts what each sanitizer stage removed.
type SanitizeReport struct {
	Tags     int
	Comments int
	Cut      int
	Phrases  int
}

// Total returns the number of removed nodes across all stages.
func (r SanitizeReport) Total() int {
	return r.Tags + r.Comments + r.Cut + r.Phrases
}

// Sanitizer removes non-content markup from a located content block.
// Every stage first collects the nodes to remove in a read-only pass and
// then detaches them, so the tree is never mutated while being walked.
// Sanitizing already-sanitized markup removes nothing.
type Sanitizer struct {
	rules   *pagecut.Rules
	matcher pagecut.PhraseMatcher
	tags    cascadia.Selector
	blocks  cascadia.Selector
	marker  *regexp.Regexp
}

// NewSanitizer compiles the selectors and patterns in rules. matcher may be
// nil when phrase removal is disabled.
func NewSanitizer(rules *pagecut.Rules, matcher pagecut.PhraseMatcher) (*Sanitizer, error) {
	s := &Sanitizer{rules: rules, matcher: matcher}

	var err error
	if len(rules.RemoveTags) > 0 {
		if s.tags, err = cascadia.Compile(strings.Join(rules.RemoveTags, ", ")); err != nil {
			return nil, pagecut.Errorf(pagecut.EINVALID, "invalid remove tags: %v", err)
		}
	}
	if len(rules.PhraseTags) > 0 {
		if s.blocks, err = cascadia.Compile(strings.Join(rules.PhraseTags, ", ")); err != nil {
			return nil, pagecut.Errorf(pagecut.EINVALID, "invalid phrase tags: %v", err)
		}
	}
	if rules.CommentMarker != "" {
		if s.marker, err = regexp.Compile(rules.CommentMarker); err != nil {
			return nil, pagecut.Errorf(pagecut.EINVALID, "invalid comment marker: %v", err)
		}
	}
	if rules.Stages.RemovePhrases && matcher == nil && len(rules.WarningPhrases) > 0 {
		return nil, pagecut.Errorf(pagecut.EINVALID, "phrase removal needs a phrase matcher")
	}
	return s, nil
}

// Sanitize runs the enabled stages over the descendants of sel, in order:
// tag removal, comment stripping, trailing cut, phrase removal. The nodes
// of sel themselves are never removed.
func (s *Sanitizer) Sanitize(sel *goquery.Selection) SanitizeReport {
	var report SanitizeReport
	stages := s.rules.Stages
	if stages.RemoveTags {
		report.Tags = s.removeTags(sel)
	}
	if stages.StripComments {
		report.Comments = s.stripComments(sel, true)
	}
	if stages.CutTrailing {
		report.Cut = s.cutTrailing(sel)
	}
	if stages.RemovePhrases {
		report.Phrases = s.removePhrases(sel)
	}
	return report
}

// Clean removes unwanted tags and comments only. It is used for fragments
// such as the title where content heuristics do not apply.
func (s *Sanitizer) Clean(sel *goquery.Selection) SanitizeReport {
	var report SanitizeReport
	if s.rules.Stages.RemoveTags {
		report.Tags = s.removeTags(sel)
	}
	if s.rules.Stages.StripComments {
		report.Comments = s.stripComments(sel, false)
	}
	return report
}

func (s *Sanitizer) removeTags(sel *goquery.Selection) int {
	if s.tags == nil {
		return 0
	}
	nodes := sel.FindMatcher(s.tags).Nodes
	for _, n := range nodes {
		detach(n)
	}
	return len(nodes)
}

// stripComments drops comment nodes. With blanks set, comments matching
// the marker pattern are replaced by a placeholder.
func (s *Sanitizer) stripComments(sel *goquery.Selection, blanks bool) int {
	var comments []*html.Node
	for _, root := range sel.Nodes {
		walkNodes(root, func(n *html.Node) {
			if n.Type == html.CommentNode {
				comments = append(comments, n)
			}
		})
	}
	for _, c := range comments {
		if blanks && s.marker != nil && s.marker.MatchString(c.Data) {
			replaceWithBlank(c)
			continue
		}
		detach(c)
	}
	return len(comments)
}

// cutTrailing removes everything after the stop marker, then the marker.
// It repeats until no marker remains so a second run finds nothing to cut.
func (s *Sanitizer) cutTrailing(sel *goquery.Selection) int {
	if s.rules.StopMarkerClass == "" {
		return 0
	}
	selector := "." + cssEscape(s.rules.StopMarkerClass)
	removed := 0
	for {
		marker := sel.Find(selector).First()
		if marker.Length() == 0 {
			return removed
		}
		m := marker.Nodes[0]
		var doomed []*html.Node
		for n := m.NextSibling; n != nil; n = n.NextSibling {
			doomed = append(doomed, n)
		}
		doomed = append(doomed, m)
		for _, n := range doomed {
			detach(n)
		}
		removed += len(doomed)
	}
}

// removePhrases deletes short blocks containing a warning phrase. Only the
// innermost flagged block is removed in each round; rounds repeat until
// nothing is flagged so that ancestors which still carry a phrase of their
// own are handled in the same call.
func (s *Sanitizer) removePhrases(sel *goquery.Selection) int {
	if s.blocks == nil || s.matcher == nil {
		return 0
	}
	removed := 0
	for {
		doomed := s.flaggedBlocks(sel)
		if len(doomed) == 0 {
			return removed
		}
		for _, n := range doomed {
			if s.rules.BlankRemovedPhrases {
				replaceWithBlank(n)
			} else {
				detach(n)
			}
		}
		removed += len(doomed)
	}
}

func (s *Sanitizer) flaggedBlocks(sel *goquery.Selection) []*html.Node {
	var flagged []*html.Node
	for _, n := range sel.FindMatcher(s.blocks).Nodes {
		if hasClass(n, BlankClass) {
			continue
		}
		if s.flagged(n) {
			flagged = append(flagged, n)
		}
	}

	// Skip any flagged block that contains another flagged block.
	roots := make(map[*html.Node]bool, len(sel.Nodes))
	for _, r := range sel.Nodes {
		roots[r] = true
	}
	outer := make(map[*html.Node]bool)
	for _, n := range flagged {
		for p := n.Parent; p != nil && !roots[p]; p = p.Parent {
			outer[p] = true
		}
	}
	doomed := flagged[:0]
	for _, n := range flagged {
		if !outer[n] {
			doomed = append(doomed, n)
		}
	}
	return doomed
}

// flagged reports whether n is a short block mentioning a warning phrase.
// Blocks at or above the short-block length are always kept.
func (s *Sanitizer) flagged(n *html.Node) bool {
	var parts []string
	walkText(n, func(t *html.Node) {
		if v := strings.TrimSpace(t.Data); v != "" {
			parts = append(parts, v)
		}
	})
	tight := strings.Join(parts, "")
	if utf8.RuneCountInString(tight) >= s.rules.ShortBlockLength {
		return false
	}
	return s.matcher.Contains(tight) || s.matcher.Contains(strings.Join(parts, " "))
}

// newBlank returns a fresh placeholder element.
func newBlank() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Br,
		Data:     "br",
		Attr:     []html.Attribute{{Key: "class", Val: BlankClass}},
	}
}

func replaceWithBlank(n *html.Node) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(newBlank(), n)
	n.Parent.RemoveChild(n)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// walkNodes visits every descendant of n in document order.
func walkNodes(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		fn(c)
		walkNodes(c, fn)
	}
}
