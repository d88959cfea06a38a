package mock

import (
	"context"

	"github.com/fwojciec/pagecut"
)

var _ pagecut.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of pagecut.Exporter.
type Exporter struct {
	FormatFn      func() string
	ContentTypeFn func() string
	ExportFn      func(doc *pagecut.RichDocument) ([]byte, error)
}

func (e *Exporter) Format() string {
	return e.FormatFn()
}

func (e *Exporter) ContentType() string {
	return e.ContentTypeFn()
}

func (e *Exporter) Export(doc *pagecut.RichDocument) ([]byte, error) {
	return e.ExportFn(doc)
}

var _ pagecut.ReadingWriter = (*ReadingWriter)(nil)

// ReadingWriter is a mock implementation of pagecut.ReadingWriter.
type ReadingWriter struct {
	WriteReadingFn func(ctx context.Context, r *pagecut.Reading) ([]string, error)
}

func (w *ReadingWriter) WriteReading(ctx context.Context, r *pagecut.Reading) ([]string, error) {
	return w.WriteReadingFn(ctx, r)
}
