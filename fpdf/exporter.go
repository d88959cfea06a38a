// Package fpdf exports rich documents as PDF files.
package fpdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fwojciec/pagecut"
	"github.com/go-pdf/fpdf"
)

// ContentType is the MIME type of PDF files.
const ContentType = "application/pdf"

const (
	embeddedFamily = "pagecut"
	coreFamily     = "Helvetica"
)

// Ensure Exporter implements pagecut.Exporter at compile time.
var _ pagecut.Exporter = (*Exporter)(nil)

// Exporter lays out the title followed by one paragraph per body block on
// A4 pages. Japanese text needs a UTF-8 TrueType font; when none is set or
// it fails to load, a core font is used and characters outside its
// encoding are lost.
type Exporter struct {
	fontPath  string
	titleSize float64
	bodySize  float64

	// OnFontFallback, if set, is called with the load error when the
	// configured font cannot be used.
	OnFontFallback func(err error)
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFont sets the path of a TrueType font to embed.
func WithFont(path string) Option {
	return func(e *Exporter) {
		e.fontPath = path
	}
}

// WithSizes sets the title and body font sizes in points.
func WithSizes(title, body float64) Option {
	return func(e *Exporter) {
		e.titleSize = title
		e.bodySize = body
	}
}

// NewExporter creates a new Exporter.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		titleSize: 16,
		bodySize:  11,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Format returns "pdf".
func (e *Exporter) Format() string {
	return "pdf"
}

// ContentType returns the PDF MIME type.
func (e *Exporter) ContentType() string {
	return ContentType
}

// Export renders doc as a PDF.
func (e *Exporter) Export(doc *pagecut.RichDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)

	w := e.writer(pdf)
	pdf.AddPage()

	w.paragraph(doc.Title, e.titleSize)
	pdf.Ln(lineHeight(e.bodySize))
	for _, block := range doc.Blocks {
		w.paragraph(block, e.bodySize)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writer selects the embedded font when it loads, else the core font.
// The font is read here rather than through fpdf's font directory, which
// would treat an absolute path as relative.
func (e *Exporter) writer(pdf *fpdf.Fpdf) *textWriter {
	if e.fontPath != "" {
		err := e.loadFont(pdf)
		if err == nil {
			return &textWriter{pdf: pdf, family: embeddedFamily, translate: identity}
		}
		if e.OnFontFallback != nil {
			e.OnFontFallback(err)
		}
	}
	return &textWriter{
		pdf:       pdf,
		family:    coreFamily,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (e *Exporter) loadFont(pdf *fpdf.Fpdf) error {
	data, err := os.ReadFile(e.fontPath)
	if err != nil {
		return fmt.Errorf("read font: %w", err)
	}
	pdf.AddUTF8FontFromBytes(embeddedFamily, "", data)
	pdf.AddUTF8FontFromBytes(embeddedFamily, "B", data)
	// fpdf skips a font it cannot parse without recording an error, which
	// only surfaces once the family is selected.
	pdf.SetFont(embeddedFamily, "", e.bodySize)
	if !pdf.Ok() {
		err := pdf.Error()
		pdf.ClearError()
		return fmt.Errorf("load font %s: %w", e.fontPath, err)
	}
	return nil
}

type textWriter struct {
	pdf       *fpdf.Fpdf
	family    string
	translate func(string) string
}

func (w *textWriter) paragraph(runs []pagecut.Run, size float64) {
	lh := lineHeight(size)
	for _, run := range runs {
		if run.Break {
			w.pdf.Ln(lh)
			continue
		}
		style := ""
		if run.Style.Bold {
			style = "B"
		}
		w.pdf.SetFont(w.family, style, size)
		if c := run.Style.Color; c != nil {
			w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
		} else {
			w.pdf.SetTextColor(0, 0, 0)
		}
		w.pdf.Write(lh, w.translate(run.Text))
	}
	w.pdf.Ln(lh)
	w.pdf.Ln(lh / 2)
}

// lineHeight converts a point size to a line height in millimetres.
func lineHeight(points float64) float64 {
	return points * 0.3528 * 1.6
}

func identity(s string) string { return s }
