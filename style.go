package pagecut

// Style describes how a run of text should look. A nil Color means the
// text keeps the default colour of the output document.
type Style struct {
	Color *RGB
	Bold  bool
}

// ClassColorMap maps CSS class names to the colour their rules declare.
// A map is built once per extraction and must not be shared between pages.
type ClassColorMap map[string]RGB

// Lookup returns the colour declared for class, if any.
func (m ClassColorMap) Lookup(class string) (RGB, bool) {
	c, ok := m[class]
	return c, ok
}

// Merge returns a new map holding the entries of m overlaid with other.
// Neither input is modified.
func (m ClassColorMap) Merge(other ClassColorMap) ClassColorMap {
	out := make(ClassColorMap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Run is one styled piece of text in a RichDocument. When Break is set the
// run is a forced line break and Text is empty.
type Run struct {
	Text  string
	Style Style
	Break bool
}

// RichDocument is the export-time view of an extraction: one title
// paragraph followed by one paragraph per top-level body block.
type RichDocument struct {
	Title  []Run
	Blocks [][]Run
}

// Empty reports whether the document has no body text.
func (d *RichDocument) Empty() bool {
	for _, block := range d.Blocks {
		for _, r := range block {
			if r.Text != "" {
				return false
			}
		}
	}
	return true
}

// PlainTitle concatenates the text of the title runs.
func (d *RichDocument) PlainTitle() string {
	var n int
	for _, r := range d.Title {
		n += len(r.Text)
	}
	b := make([]byte, 0, n)
	for _, r := range d.Title {
		b = append(b, r.Text...)
	}
	return string(b)
}
