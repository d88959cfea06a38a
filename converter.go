package pagecut

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be sanitized HTML (e.g., ExtractResult.BodyHTML).
	Convert(html string) (string, error)
}
