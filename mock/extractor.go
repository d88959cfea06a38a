package mock

import "github.com/fwojciec/pagecut"

var _ pagecut.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pagecut.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*pagecut.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*pagecut.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ pagecut.PhraseMatcher = (*PhraseMatcher)(nil)

// PhraseMatcher is a mock implementation of pagecut.PhraseMatcher.
type PhraseMatcher struct {
	ContainsFn func(text string) bool
}

func (m *PhraseMatcher) Contains(text string) bool {
	return m.ContainsFn(text)
}

var _ pagecut.ColorMapper = (*ColorMapper)(nil)

// ColorMapper is a mock implementation of pagecut.ColorMapper.
type ColorMapper struct {
	MapColorsFn func(css string) pagecut.ClassColorMap
}

func (m *ColorMapper) MapColors(css string) pagecut.ClassColorMap {
	return m.MapColorsFn(css)
}
