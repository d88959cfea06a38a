package pagecut

import (
	"strings"
	"unicode"
)

// MaxFilenameRunes caps the length of suggested filenames.
const MaxFilenameRunes = 50

// SuggestFilename derives a download filename from an article title.
// Characters that are unsafe on common filesystems are dropped, whitespace
// is collapsed, and the base name is capped at MaxFilenameRunes runes.
func SuggestFilename(title, ext string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case strings.ContainsRune(`\/:*?"<>|`, r), unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteRune('_')
		}
		space = false
		b.WriteRune(r)
	}

	name := []rune(strings.Trim(b.String(), "._"))
	if len(name) > MaxFilenameRunes {
		name = name[:MaxFilenameRunes]
	}
	base := string(name)
	if base == "" {
		base = "article"
	}
	if ext == "" {
		return base
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}
