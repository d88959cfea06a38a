package goquery

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/fwojciec/pagecut"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Renderer implements pagecut.Renderer at compile time.
var _ pagecut.Renderer = (*Renderer)(nil)

// blockTags end with an implicit line break when rendered to runs.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

var displayTemplate = template.Must(template.New("display").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<base href="{{.URL}}">
<title>{{.Title}}</title>
{{.Styles}}
<style>
html, body { overflow: visible !important; height: auto !important; position: static !important; background: #fff !important; }
.pagecut-title { font-size: 22px; font-weight: bold; line-height: 1.4; margin: 16px; }
.pagecut-body { font-size: 16px; line-height: 1.8; margin: 16px; }
</style>
</head>
<body>
<div class="pagecut-title">{{if .TitleHTML}}{{.TitleHTML}}{{else}}<h1>{{.Title}}</h1>{{end}}</div>
<div class="pagecut-body">{{.BodyHTML}}</div>
</body>
</html>
`))

// Renderer produces display HTML and export runs from an extraction.
// It holds no state; one Renderer may serve any number of extractions.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// DisplayHTML reassembles the sanitized title and body with the page's
// original stylesheets and a base href so relative assets still resolve.
func (r *Renderer) DisplayHTML(result *pagecut.ExtractResult) (string, error) {
	var buf bytes.Buffer
	err := displayTemplate.Execute(&buf, struct {
		URL       string
		Title     string
		Styles    template.HTML
		TitleHTML template.HTML
		BodyHTML  template.HTML
	}{
		URL:       result.URL,
		Title:     result.Title(),
		Styles:    template.HTML(result.StyleHTML),
		TitleHTML: template.HTML(result.TitleHTML),
		BodyHTML:  template.HTML(result.BodyHTML),
	})
	if err != nil {
		return "", pagecut.Errorf(pagecut.EINTERNAL, "failed to render display HTML: %v", err)
	}
	return buf.String(), nil
}

// RichText converts the title and body into styled runs. Title runs are
// always bold. A not-found result yields a document with no body blocks.
func (r *Renderer) RichText(result *pagecut.ExtractResult) (*pagecut.RichDocument, error) {
	doc := &pagecut.RichDocument{}

	if result.TitleHTML != "" {
		nodes, err := parseFragment(result.TitleHTML)
		if err != nil {
			return nil, err
		}
		w := &runWriter{colors: result.ClassColors}
		for _, n := range nodes {
			w.node(n)
		}
		doc.Title = w.finish()
	}
	if len(doc.Title) == 0 {
		doc.Title = []pagecut.Run{{Text: result.Title()}}
	}
	for i := range doc.Title {
		doc.Title[i].Style.Bold = true
	}

	if !result.Found {
		return doc, nil
	}

	nodes, err := parseFragment(result.BodyHTML)
	if err != nil {
		return nil, err
	}
	doc.Blocks = blocks(topLevel(nodes), result.ClassColors)
	return doc, nil
}

// topLevel returns the nodes whose children are the document's top-level
// blocks: the children of a single wrapping container, or the fragment
// roots themselves.
func topLevel(nodes []*html.Node) []*html.Node {
	var root *html.Node
	for _, n := range nodes {
		switch {
		case n.Type == html.ElementNode && root == nil:
			root = n
		case n.Type == html.ElementNode:
			return nodes
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) != "":
			return nodes
		}
	}
	if root == nil {
		return nodes
	}
	var children []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

// blocks renders each top-level block as one paragraph. Consecutive
// inline nodes are grouped into a single paragraph.
func blocks(nodes []*html.Node, colors pagecut.ClassColorMap) [][]pagecut.Run {
	var out [][]pagecut.Run
	w := &runWriter{colors: colors}

	flush := func() {
		runs := w.finish()
		if len(runs) > 0 || w.blank {
			out = append(out, runs)
		}
		w = &runWriter{colors: colors}
	}

	for _, n := range nodes {
		if n.Type == html.ElementNode && blockTags[n.Data] {
			flush()
			w.node(n)
			flush()
			continue
		}
		w.node(n)
	}
	flush()
	return out
}

// runWriter accumulates runs for one paragraph.
type runWriter struct {
	colors pagecut.ClassColorMap
	runs   []pagecut.Run

	// blank records that a placeholder was seen, so an otherwise empty
	// paragraph is kept to preserve spacing.
	blank bool
}

func (w *runWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n)
	case html.ElementNode:
		if hiddenTags[n.Data] {
			return
		}
		if n.DataAtom == atom.Br {
			if hasClass(n, BlankClass) {
				w.blank = true
			}
			w.runs = append(w.runs, pagecut.Run{Break: true})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.node(c)
		}
		if blockTags[n.Data] {
			w.blockEnd()
		}
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.node(c)
		}
	}
}

func (w *runWriter) text(n *html.Node) {
	text := strings.Join(strings.Fields(n.Data), " ")
	if text == "" {
		// Whitespace between inline elements still separates words.
		if len(n.Data) > 0 && w.lastText() {
			w.appendText(" ", w.runs[len(w.runs)-1].Style)
		}
		return
	}
	if isSpace(n.Data[0]) && w.lastText() {
		text = " " + text
	}
	if isSpace(n.Data[len(n.Data)-1]) {
		text += " "
	}
	w.appendText(text, ResolveStyle(n, w.colors))
}

// appendText adds text, merging it into the previous run when the styles
// match. Leading spaces are dropped at the start of a line.
func (w *runWriter) appendText(text string, style pagecut.Style) {
	if !w.lastText() {
		text = strings.TrimLeft(text, " ")
		if text == "" {
			return
		}
	} else if prev := &w.runs[len(w.runs)-1]; strings.HasSuffix(prev.Text, " ") && strings.HasPrefix(text, " ") {
		text = text[1:]
	}
	if n := len(w.runs); n > 0 && !w.runs[n-1].Break && sameStyle(w.runs[n-1].Style, style) {
		w.runs[n-1].Text += text
		return
	}
	w.runs = append(w.runs, pagecut.Run{Text: text, Style: style})
}

func (w *runWriter) blockEnd() {
	if n := len(w.runs); n > 0 && !w.runs[n-1].Break {
		w.runs = append(w.runs, pagecut.Run{Break: true})
	}
}

func (w *runWriter) lastText() bool {
	n := len(w.runs)
	return n > 0 && !w.runs[n-1].Break
}

// finish trims trailing breaks and whitespace and returns the runs.
func (w *runWriter) finish() []pagecut.Run {
	runs := w.runs
	for len(runs) > 0 && runs[len(runs)-1].Break {
		runs = runs[:len(runs)-1]
	}
	if n := len(runs); n > 0 {
		runs[n-1].Text = strings.TrimRight(runs[n-1].Text, " ")
		if runs[n-1].Text == "" {
			runs = runs[:n-1]
		}
	}
	return runs
}

func sameStyle(a, b pagecut.Style) bool {
	if a.Bold != b.Bold {
		return false
	}
	switch {
	case a.Color == nil && b.Color == nil:
		return true
	case a.Color == nil || b.Color == nil:
		return false
	}
	return *a.Color == *b.Color
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// parseFragment parses markup in a body context.
func parseFragment(s string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, pagecut.Errorf(pagecut.EINTERNAL, "failed to parse fragment: %v", err)
	}
	return nodes, nil
}
