package mock

import "github.com/fwojciec/pagecut"

var _ pagecut.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of pagecut.Renderer.
type Renderer struct {
	DisplayHTMLFn func(result *pagecut.ExtractResult) (string, error)
	RichTextFn    func(result *pagecut.ExtractResult) (*pagecut.RichDocument, error)
}

func (r *Renderer) DisplayHTML(result *pagecut.ExtractResult) (string, error) {
	return r.DisplayHTMLFn(result)
}

func (r *Renderer) RichText(result *pagecut.ExtractResult) (*pagecut.RichDocument, error) {
	return r.RichTextFn(result)
}
