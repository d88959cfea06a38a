// Package douceur reads class colours from page stylesheets.
package douceur

import (
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/fwojciec/pagecut"
)

// Ensure ColorMapper implements pagecut.ColorMapper at compile time.
var _ pagecut.ColorMapper = (*ColorMapper)(nil)

// classSelector matches ".name" and "tag.name".
var classSelector = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9]*)?\.(-?[_a-zA-Z][_a-zA-Z0-9-]*)$`)

// ColorMapper extracts colour declarations for single-class selectors.
// Descendant, attribute and pseudo selectors are ignored, as are rules
// nested in at-rules such as @media.
type ColorMapper struct{}

// NewColorMapper creates a new ColorMapper.
func NewColorMapper() *ColorMapper {
	return &ColorMapper{}
}

// MapColors parses stylesheet text and returns the colour of each class.
// Later rules override earlier ones unless the earlier declaration is
// !important. Unparseable stylesheets yield an empty map.
func (m *ColorMapper) MapColors(stylesheet string) pagecut.ClassColorMap {
	out := make(pagecut.ClassColorMap)
	if strings.TrimSpace(stylesheet) == "" {
		return out
	}
	sheet, err := parser.Parse(stylesheet)
	if err != nil {
		return out
	}

	important := make(map[string]bool)
	for _, rule := range sheet.Rules {
		if rule.Kind != css.QualifiedRule {
			continue
		}
		color, imp, ok := ruleColor(rule)
		if !ok {
			continue
		}
		for _, sel := range rule.Selectors {
			match := classSelector.FindStringSubmatch(strings.TrimSpace(sel))
			if match == nil {
				continue
			}
			class := match[1]
			if important[class] && !imp {
				continue
			}
			out[class] = color
			important[class] = imp
		}
	}
	return out
}

// ruleColor returns the last resolvable color declaration of rule.
func ruleColor(rule *css.Rule) (c pagecut.RGB, important bool, ok bool) {
	for _, d := range rule.Declarations {
		if !strings.EqualFold(strings.TrimSpace(d.Property), "color") {
			continue
		}
		if ok && important && !d.Important {
			continue
		}
		if parsed, valid := pagecut.ParseColor(d.Value); valid {
			c, important, ok = parsed, d.Important, true
		}
	}
	return c, important, ok
}
