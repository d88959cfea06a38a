// Package htmltomarkdown converts extracted article bodies to Markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/pagecut"
)

// Ensure Converter implements pagecut.Converter at compile time.
var _ pagecut.Converter = (*Converter)(nil)

// blankLine matches the sanitizer's blank-line placeholder. Markdown
// already separates paragraphs, so the placeholder only adds hard breaks.
var blankLine = regexp.MustCompile(`(?i)<br\s+class="pagecut-blank"\s*/?>`)

// runsOfBlankLines collapses what dropped placeholders leave behind.
var runsOfBlankLines = regexp.MustCompile(`\n{3,}`)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", pagecut.Errorf(pagecut.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(blankLine.ReplaceAllString(html, ""))
	if err != nil {
		return "", pagecut.Wrap(pagecut.EINTERNAL, err, "markdown conversion failed")
	}

	return strings.TrimSpace(runsOfBlankLines.ReplaceAllString(result, "\n\n")), nil
}
