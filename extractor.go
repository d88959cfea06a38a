package pagecut

// NoTitle is shown when neither a heading nor a <title> can be found.
const NoTitle = "タイトルなし"

// NotFoundHTML is the placeholder body used when no content block qualifies.
const NotFoundHTML = `<div class="pagecut-notfound"><p>本文が見つかりませんでした</p></div>`

// ExtractResult holds the content extracted from one page. Fragments are
// serialized HTML so the value is immutable once created; consumers parse
// them again as needed.
type ExtractResult struct {
	// URL is the page address, used as the base for relative links.
	URL string

	// PageTitle is the document's <title> text.
	PageTitle string

	// TitleHTML is the sanitized article heading.
	TitleHTML string

	// TitleText is the plain text of the article heading.
	TitleText string

	// BodyHTML is the sanitized main content block, or NotFoundHTML.
	BodyHTML string

	// StyleHTML holds the page's <link rel="stylesheet"> and <style> tags
	// verbatim, in document order.
	StyleHTML string

	// ClassColors maps class names to colours for this page.
	ClassColors ClassColorMap

	// Found is false when BodyHTML is the not-found placeholder.
	Found bool
}

// Title returns the best available title for display.
func (r *ExtractResult) Title() string {
	switch {
	case r.TitleText != "":
		return r.TitleText
	case r.PageTitle != "":
		return r.PageTitle
	}
	return NoTitle
}

// Extractor locates and sanitizes the main content of a page.
type Extractor interface {
	// Extract processes rendered HTML fetched from pageURL.
	// A page without recognizable content is not an error: the result
	// has Found set to false.
	Extract(html string, pageURL string) (*ExtractResult, error)
}

// ColorMapper builds a class colour map from stylesheet text.
type ColorMapper interface {
	// MapColors returns the colours declared by simple ".class { color }"
	// rules. Unparseable CSS yields an empty map.
	MapColors(css string) ClassColorMap
}

// PhraseMatcher reports whether text contains any configured phrase.
type PhraseMatcher interface {
	Contains(text string) bool
}

// Renderer turns an extraction into its two outputs: a self-contained
// HTML document for display, and styled runs for document export.
type Renderer interface {
	DisplayHTML(result *ExtractResult) (string, error)
	RichText(result *ExtractResult) (*RichDocument, error)
}
