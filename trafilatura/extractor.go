// Package trafilatura adapts go-trafilatura as a fallback content
// extractor for pages the locator cannot place.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/pagecut"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements pagecut.Extractor at compile time.
var _ pagecut.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Images and links are kept so the
// fallback body reads like the located one.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback: true,
			IncludeImages:  true,
			IncludeLinks:   true,
		},
	}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*pagecut.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, pagecut.Errorf(pagecut.EINVALID, "empty HTML input")
	}

	opts := e.opts
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, pagecut.Wrap(pagecut.EINTERNAL, err, "trafilatura extraction failed")
	}

	var body string
	if result.ContentNode != nil {
		body, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &pagecut.ExtractResult{
		URL:       pageURL,
		PageTitle: strings.TrimSpace(result.Metadata.Title),
		BodyHTML:  body,
		Found:     strings.TrimSpace(result.ContentText) != "",
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
