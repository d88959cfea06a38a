// Package readability adapts go-readability as a fallback content
// extractor for pages the locator cannot place.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/pagecut"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements pagecut.Extractor at compile time.
var _ pagecut.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. Relative links
// are resolved against pageURL when it parses.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*pagecut.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, pagecut.Errorf(pagecut.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return nil, pagecut.Wrap(pagecut.EINTERNAL, err, "readability extraction failed")
	}

	return &pagecut.ExtractResult{
		URL:       pageURL,
		PageTitle: strings.TrimSpace(article.Title),
		BodyHTML:  article.Content,
		Found:     strings.TrimSpace(article.TextContent) != "",
	}, nil
}
