package goquery

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagecut"
)

// scrollLockProps are the declarations gates use to freeze the page.
var scrollLockProps = map[string]bool{
	"overflow":   true,
	"overflow-x": true,
	"overflow-y": true,
	"height":     true,
	"position":   true,
}

// StripOverlays is the static counterpart of pagecut.NeutralizeScript for
// markup captured without a live rendering engine. Only inline styles are
// visible here, so it removes body children whose style attribute places
// them fixed or absolute above rules.OverlayZIndex, and drops scroll-lock
// declarations from html and body. It returns the number of removed
// overlays.
func StripOverlays(doc *goquery.Document, rules *pagecut.Rules) int {
	var overlays []*goquery.Selection
	doc.Find("body > *, body > section > *").Each(func(_ int, sel *goquery.Selection) {
		decls := inlineDeclarations(attr(sel.Nodes[0], "style"))
		pos := strings.ToLower(decls["position"])
		if pos != "fixed" && pos != "absolute" {
			return
		}
		z, err := strconv.Atoi(strings.TrimSpace(decls["z-index"]))
		if err != nil || z <= rules.OverlayZIndex {
			return
		}
		overlays = append(overlays, sel)
	})
	for _, sel := range overlays {
		sel.Remove()
	}

	doc.Find("html, body").Each(func(_ int, sel *goquery.Selection) {
		style, ok := sel.Attr("style")
		if !ok {
			return
		}
		decls := inlineDeclarations(style)
		kept := make([]string, 0, len(decls))
		for prop, value := range decls {
			if scrollLockProps[prop] {
				continue
			}
			kept = append(kept, prop+": "+value)
		}
		sort.Strings(kept)
		if len(kept) == 0 {
			sel.RemoveAttr("style")
			return
		}
		sel.SetAttr("style", strings.Join(kept, "; "))
	})
	return len(overlays)
}
