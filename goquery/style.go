package goquery

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/fwojciec/pagecut"
	"golang.org/x/net/html"
)

// boldTags always render bold.
var boldTags = map[string]bool{
	"strong": true,
	"b":      true,
	"h1":     true,
	"h2":     true,
}

// ResolveStyle returns the style of text at n by walking n and its
// ancestors. Colour and weight are resolved independently; for each, the
// closest element that declares it wins.
//
// Per element, colour is taken from the first of: the computed-colour
// annotation, the inline style, a class in colors, the legacy color
// attribute. Weight is bold when the closest signal is a bold tag, an
// inline bold weight, a "bold" class, or a computed weight of 700 or more.
// Only the computed annotation can declare non-bold; a static
// "font-weight: normal" does not undo a bold ancestor.
func ResolveStyle(n *html.Node, colors pagecut.ClassColorMap) pagecut.Style {
	var style pagecut.Style
	var colorDone, weightDone bool

	for el := n; el != nil && !(colorDone && weightDone); el = el.Parent {
		if el.Type != html.ElementNode {
			continue
		}
		decls := inlineDeclarations(attr(el, "style"))

		if !colorDone {
			if c, ok := elementColor(el, decls, colors); ok {
				style.Color = &c
				colorDone = true
			}
		}
		if !weightDone {
			if bold, ok := elementWeight(el, decls); ok {
				style.Bold = bold
				weightDone = true
			}
		}
	}
	return style
}

func elementColor(el *html.Node, decls map[string]string, colors pagecut.ClassColorMap) (pagecut.RGB, bool) {
	if v, ok := attrOK(el, pagecut.ComputedColorAttr); ok {
		if c, ok := pagecut.ParseColor(v); ok {
			return c, true
		}
	}
	if v, ok := decls["color"]; ok {
		if c, ok := pagecut.ParseColor(v); ok {
			return c, true
		}
	}
	for _, class := range classes(el) {
		if c, ok := colors.Lookup(class); ok {
			return c, true
		}
	}
	if v, ok := attrOK(el, "color"); ok {
		if c, ok := pagecut.ParseColor(v); ok {
			return c, true
		}
	}
	return pagecut.RGB{}, false
}

func elementWeight(el *html.Node, decls map[string]string) (bold bool, declared bool) {
	if v, ok := attrOK(el, pagecut.ComputedWeightAttr); ok {
		return pagecut.ParseFontWeight(v), true
	}
	if boldTags[el.Data] {
		return true, true
	}
	if v, ok := decls["font-weight"]; ok && pagecut.ParseFontWeight(v) {
		return true, true
	}
	for _, class := range classes(el) {
		if class == "bold" {
			return true, true
		}
	}
	return false, false
}

// inlineDeclarations parses a style attribute into lower-cased property
// names. Later declarations override earlier ones unless the earlier one
// is !important.
func inlineDeclarations(style string) map[string]string {
	style = strings.TrimSpace(style)
	if style == "" {
		return nil
	}
	// The parser only finishes a declaration at ";" or "}".
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, _ := parser.ParseDeclarations(style)
	if len(decls) == 0 {
		return nil
	}
	out := make(map[string]string, len(decls))
	important := make(map[string]bool, len(decls))
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		if prop == "" || (important[prop] && !d.Important) {
			continue
		}
		out[prop] = strings.TrimSpace(d.Value)
		important[prop] = d.Important
	}
	return out
}

// attr returns the value of key on n, or "".
func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// setAttr sets key on n, replacing any existing value.
func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// classes returns the class tokens of n in attribute order.
func classes(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

// hasClass reports whether n carries the class token.
func hasClass(n *html.Node, class string) bool {
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}
