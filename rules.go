package pagecut

import "regexp"

// Rules holds the site heuristics used by the locator, sanitizer, and
// neutralizer. They are configuration rather than code so tests and users
// can substitute their own fixtures. Start from DefaultRules and override.
type Rules struct {
	// ContentIDs are element ids tried, in order, before scoring candidates.
	ContentIDs []string `yaml:"content_ids"`

	// CandidateTags are the block elements scored by the locator.
	CandidateTags []string `yaml:"candidate_tags"`

	// MaxLinkFraction rejects candidates whose anchor text exceeds this
	// share of their visible text.
	MaxLinkFraction float64 `yaml:"max_link_fraction"`

	// LinkHeavyFallback selects the best-scoring rejected candidate when no
	// candidate passes the link filter. Off by default: an explicit miss is
	// preferred to a navigation block.
	LinkHeavyFallback bool `yaml:"link_heavy_fallback"`

	// TitleClass marks the preferred h1 for the article title.
	TitleClass string `yaml:"title_class"`

	// ChromeTags are removed from the whole page before locating content.
	ChromeTags []string `yaml:"chrome_tags"`

	// RemoveTags are removed from the located content.
	RemoveTags []string `yaml:"remove_tags"`

	// CommentMarker matches comments that are replaced by a blank line
	// instead of being dropped.
	CommentMarker string `yaml:"comment_marker"`

	// StopMarkerClass marks the element after which everything is cut.
	StopMarkerClass string `yaml:"stop_marker_class"`

	// WarningPhrases flag boilerplate blocks for removal.
	WarningPhrases []string `yaml:"warning_phrases"`

	// PhraseTags are the elements checked for warning phrases.
	PhraseTags []string `yaml:"phrase_tags"`

	// ShortBlockLength is the rune length at or above which a flagged
	// block is kept as real content.
	ShortBlockLength int `yaml:"short_block_length"`

	// BlankRemovedPhrases replaces removed phrase blocks with a blank line.
	BlankRemovedPhrases bool `yaml:"blank_removed_phrases"`

	// Stages toggles individual sanitizer stages.
	Stages Stages `yaml:"stages"`

	// GateKeywords are the button texts clicked to dismiss interstitials.
	GateKeywords []string `yaml:"gate_keywords"`

	// OverlayZIndex is the stacking order above which fixed or absolute
	// body children are treated as overlays.
	OverlayZIndex int `yaml:"overlay_z_index"`

	// ClassColors are conventional class colours used when the page's own
	// stylesheets do not declare them. Values are CSS colour expressions.
	ClassColors map[string]string `yaml:"class_colors"`
}

// Stages toggles the sanitizer stages.
type Stages struct {
	RemoveTags    bool `yaml:"remove_tags"`
	StripComments bool `yaml:"strip_comments"`
	CutTrailing   bool `yaml:"cut_trailing"`
	RemovePhrases bool `yaml:"remove_phrases"`
}

// DefaultRules returns the rules tuned for the target site.
func DefaultRules() *Rules {
	return &Rules{
		ContentIDs:      []string{"sentenceBox", "main"},
		CandidateTags:   []string{"div", "article", "section", "main", "td"},
		MaxLinkFraction: 0.5,
		TitleClass:      "pageTitle",
		ChromeTags: []string{
			"script", "style", "noscript", "nav", "footer", "header", "iframe", "svg",
		},
		RemoveTags: []string{
			"script", "noscript", "iframe", "form", "button", "input", "select", "textarea", "object", "embed",
		},
		CommentMarker:   `(?i)^\s*/?\s*(ad|pr|広告|spacer)([\s_:-]|$)`,
		StopMarkerClass: "kakomiPop2",
		WarningPhrases: []string{
			"無断転載",
			"無断複製",
			"無断使用",
			"18歳未満",
			"no unauthorized reproduction",
			"all rights reserved",
		},
		PhraseTags:       []string{"p", "div", "span", "font", "b"},
		ShortBlockLength: 200,
		Stages: Stages{
			RemoveTags:    true,
			StripComments: true,
			CutTrailing:   true,
			RemovePhrases: true,
		},
		GateKeywords:  []string{"18歳以上", "はい", "入場する", "同意する", "ENTER", "OK"},
		OverlayZIndex: 100,
		ClassColors: map[string]string{
			"marker": "#e60033",
			"quote":  "#0066cc",
			"red":    "#ff0000",
			"blue":   "#0000ff",
		},
	}
}

// Validate returns an error if the rules cannot drive an extraction.
func (r *Rules) Validate() error {
	if len(r.CandidateTags) == 0 && len(r.ContentIDs) == 0 {
		return Errorf(EINVALID, "rules need content ids or candidate tags")
	}
	if r.MaxLinkFraction < 0 || r.MaxLinkFraction > 1 {
		return Errorf(EINVALID, "max link fraction %v out of range [0,1]", r.MaxLinkFraction)
	}
	if r.ShortBlockLength < 0 {
		return Errorf(EINVALID, "short block length must not be negative")
	}
	if r.CommentMarker != "" {
		if _, err := regexp.Compile(r.CommentMarker); err != nil {
			return Errorf(EINVALID, "invalid comment marker: %v", err)
		}
	}
	for class, value := range r.ClassColors {
		if _, ok := ParseColor(value); !ok {
			return Errorf(EINVALID, "class %q: unrecognized colour %q", class, value)
		}
	}
	return nil
}

// ClassColorMap returns the default class colours as a ClassColorMap.
// Unresolvable entries are skipped.
func (r *Rules) ClassColorMap() ClassColorMap {
	m := make(ClassColorMap, len(r.ClassColors))
	for class, value := range r.ClassColors {
		if c, ok := ParseColor(value); ok {
			m[class] = c
		}
	}
	return m
}
