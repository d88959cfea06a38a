package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagecut"
)

// ResolveTitle finds the article heading. It prefers an h1 carrying
// rules.TitleClass, then any h1. The returned selection is empty when the
// page has no usable h1; text then falls back to the document <title>.
func ResolveTitle(doc *goquery.Document, rules *pagecut.Rules) (*goquery.Selection, string) {
	if rules.TitleClass != "" {
		if sel, text := firstHeading(doc.Find("h1." + cssEscape(rules.TitleClass))); text != "" {
			return sel, text
		}
	}
	if sel, text := firstHeading(doc.Find("h1")); text != "" {
		return sel, text
	}
	return doc.Slice(0, 0), pageTitle(doc)
}

// firstHeading returns the first heading in sel with non-empty text.
func firstHeading(sel *goquery.Selection) (*goquery.Selection, string) {
	for i := range sel.Nodes {
		h := sel.Eq(i)
		if text := headingText(h); text != "" {
			return h, text
		}
	}
	return sel.Slice(0, 0), ""
}

// pageTitle returns the trimmed text of the document <title>.
func pageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("head title").First().Text())
}

func headingText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return collapseSpace(sel.Text())
}

// collapseSpace trims s and folds internal whitespace runs to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
