package mock

import "github.com/fwojciec/pagecut"

var _ pagecut.Converter = (*Converter)(nil)

// Converter is a mock implementation of pagecut.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
