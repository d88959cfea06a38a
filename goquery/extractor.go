// Package goquery implements content location, sanitization, and
// style-preserving rendering on top of goquery and x/net/html.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagecut"
)

// Ensure Extractor implements pagecut.Extractor at compile time.
var _ pagecut.Extractor = (*Extractor)(nil)

// Extractor locates the article title and body in rendered HTML and
// sanitizes both.
type Extractor struct {
	rules     *pagecut.Rules
	sanitizer *Sanitizer
	colors    pagecut.ColorMapper
	fallback  pagecut.Extractor
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithColorMapper sets the parser used to read class colours from the
// page's <style> blocks. Without one only the rule defaults apply.
func WithColorMapper(m pagecut.ColorMapper) ExtractorOption {
	return func(e *Extractor) {
		e.colors = m
	}
}

// WithFallback sets an extractor consulted when no candidate block
// qualifies. Its content is sanitized like a located block.
func WithFallback(f pagecut.Extractor) ExtractorOption {
	return func(e *Extractor) {
		e.fallback = f
	}
}

// NewExtractor creates an Extractor for rules. matcher backs warning-phrase
// removal and may be nil when that stage is disabled.
func NewExtractor(rules *pagecut.Rules, matcher pagecut.PhraseMatcher, opts ...ExtractorOption) (*Extractor, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	sanitizer, err := NewSanitizer(rules, matcher)
	if err != nil {
		return nil, err
	}
	e := &Extractor{rules: rules, sanitizer: sanitizer}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract processes rendered HTML and returns the article title and body.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*pagecut.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, pagecut.Errorf(pagecut.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, pagecut.Errorf(pagecut.EINVALID, "failed to parse HTML: %v", err)
	}

	StripOverlays(doc, e.rules)

	styleHTML, css := collectStyles(doc)
	colors := e.rules.ClassColorMap()
	if e.colors != nil {
		colors = colors.Merge(e.colors.MapColors(css))
	}

	result := &pagecut.ExtractResult{
		URL:         pageURL,
		PageTitle:   pageTitle(doc),
		StyleHTML:   styleHTML,
		ClassColors: colors,
	}

	// Site chrome goes first so a logo heading in a header never wins the
	// title.
	if len(e.rules.ChromeTags) > 0 {
		doc.Find(strings.Join(e.rules.ChromeTags, ", ")).Remove()
	}

	// The heading is detached before locating so it is never part of the
	// body, wherever the site places it.
	titleSel, titleText := ResolveTitle(doc, e.rules)
	if titleSel.Length() > 0 {
		titleSel.Remove()
		e.sanitizer.Clean(titleSel)
		result.TitleHTML, _ = goquery.OuterHtml(titleSel)
		result.TitleText = collapseSpace(titleSel.Text())
	} else {
		result.TitleText = titleText
	}

	body, _, ok := Locate(doc, e.rules)
	if !ok {
		body, ok = e.fallbackBody(rawHTML, pageURL)
	}
	if !ok {
		result.BodyHTML = pagecut.NotFoundHTML
		return result, nil
	}

	stampInherited(body, colors)
	e.sanitizer.Sanitize(body)
	bodyHTML, err := goquery.OuterHtml(body)
	if err != nil {
		return nil, pagecut.Errorf(pagecut.EINTERNAL, "failed to render content: %v", err)
	}
	result.BodyHTML = bodyHTML
	result.Found = true
	return result, nil
}

// fallbackBody asks the fallback extractor for content and wraps it in a
// container so it can be sanitized like a located block.
func (e *Extractor) fallbackBody(rawHTML, pageURL string) (*goquery.Selection, bool) {
	if e.fallback == nil {
		return nil, false
	}
	fb, err := e.fallback.Extract(rawHTML, pageURL)
	if err != nil || !fb.Found || strings.TrimSpace(fb.BodyHTML) == "" {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="pagecut-fallback">` + fb.BodyHTML + `</div>`,
	))
	if err != nil {
		return nil, false
	}
	sel := doc.Find("div.pagecut-fallback").First()
	return sel, sel.Length() > 0
}

// collectStyles returns the page's stylesheet links and style blocks as
// markup, in document order, plus the concatenated text of the blocks.
func collectStyles(doc *goquery.Document) (markup string, css string) {
	var tags, sheets []string
	doc.Find("link, style").Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "link" {
			rel, _ := sel.Attr("rel")
			if !strings.Contains(strings.ToLower(rel), "stylesheet") {
				return
			}
		} else {
			sheets = append(sheets, sel.Text())
		}
		if h, err := goquery.OuterHtml(sel); err == nil {
			tags = append(tags, h)
		}
	})
	return strings.Join(tags, "\n"), strings.Join(sheets, "\n")
}

// stampInherited copies the colour and weight a located block inherits from
// its ancestors onto the block itself, so the style survives once the block
// is rendered on its own.
func stampInherited(body *goquery.Selection, colors pagecut.ClassColorMap) {
	for _, root := range body.Nodes {
		if root.Parent == nil {
			continue
		}
		inherited := ResolveStyle(root.Parent, colors)
		decls := inlineDeclarations(attr(root, "style"))
		if _, declared := elementColor(root, decls, colors); !declared && inherited.Color != nil {
			setAttr(root, pagecut.ComputedColorAttr, inherited.Color.String())
		}
		if _, declared := elementWeight(root, decls); !declared && inherited.Bold {
			setAttr(root, pagecut.ComputedWeightAttr, "700")
		}
	}
}
