// Package docx exports rich documents as Word (WordprocessingML) files.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/fwojciec/pagecut"
)

// ContentType is the MIME type of .docx files.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT   = "http://schemas.openxmlformats.org/package/2006/content-types"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	mainContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// Ensure Exporter implements pagecut.Exporter at compile time.
var _ pagecut.Exporter = (*Exporter)(nil)

// Exporter writes a title paragraph, an empty spacer paragraph, and one
// paragraph per body block. Run colour and weight are preserved.
type Exporter struct {
	font      string
	titleSize int
	bodySize  int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFont sets the font family applied to every run.
func WithFont(name string) Option {
	return func(e *Exporter) {
		e.font = name
	}
}

// WithSizes sets the title and body font sizes in points.
func WithSizes(title, body float64) Option {
	return func(e *Exporter) {
		e.titleSize = int(title * 2)
		e.bodySize = int(body * 2)
	}
}

// NewExporter creates a new Exporter. The defaults are a 16pt title and
// 10.5pt body in Yu Mincho.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		font:      "Yu Mincho",
		titleSize: 32,
		bodySize:  21,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Format returns "docx".
func (e *Exporter) Format() string {
	return "docx"
}

// ContentType returns the .docx MIME type.
func (e *Exporter) ContentType() string {
	return ContentType
}

// Export renders doc as a .docx archive.
func (e *Exporter) Export(doc *pagecut.RichDocument) ([]byte, error) {
	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{"[Content_Types].xml", contentTypes()},
		{"_rels/.rels", packageRels()},
		{"word/document.xml", e.document(doc)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := p.doc.WriteTo(w); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) document(doc *pagecut.RichDocument) *etree.Document {
	d := newXML()
	root := d.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsMain)
	body := root.CreateElement("w:body")

	e.paragraph(body, doc.Title, e.titleSize)
	body.CreateElement("w:p")
	for _, block := range doc.Blocks {
		e.paragraph(body, block, e.bodySize)
	}

	sect := body.CreateElement("w:sectPr")
	size := sect.CreateElement("w:pgSz")
	size.CreateAttr("w:w", "11906")
	size.CreateAttr("w:h", "16838")
	return d
}

func (e *Exporter) paragraph(body *etree.Element, runs []pagecut.Run, halfPoints int) {
	p := body.CreateElement("w:p")
	for _, run := range runs {
		r := p.CreateElement("w:r")
		e.properties(r, run.Style, halfPoints)
		if run.Break {
			r.CreateElement("w:br")
			continue
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(run.Text)
	}
}

func (e *Exporter) properties(r *etree.Element, style pagecut.Style, halfPoints int) {
	rPr := r.CreateElement("w:rPr")
	if e.font != "" {
		fonts := rPr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", e.font)
		fonts.CreateAttr("w:hAnsi", e.font)
		fonts.CreateAttr("w:eastAsia", e.font)
	}
	if style.Bold {
		rPr.CreateElement("w:b")
	}
	if style.Color != nil {
		rPr.CreateElement("w:color").CreateAttr("w:val", style.Color.Hex())
	}
	sz := strconv.Itoa(halfPoints)
	rPr.CreateElement("w:sz").CreateAttr("w:val", sz)
	rPr.CreateElement("w:szCs").CreateAttr("w:val", sz)
}

func contentTypes() *etree.Document {
	d := newXML()
	types := d.CreateElement("Types")
	types.CreateAttr("xmlns", nsCT)

	def := types.CreateElement("Default")
	def.CreateAttr("Extension", "rels")
	def.CreateAttr("ContentType", "application/vnd.openxmlformats-package.relationships+xml")
	def = types.CreateElement("Default")
	def.CreateAttr("Extension", "xml")
	def.CreateAttr("ContentType", "application/xml")

	override := types.CreateElement("Override")
	override.CreateAttr("PartName", "/word/document.xml")
	override.CreateAttr("ContentType", mainContentType)
	return d
}

func packageRels() *etree.Document {
	d := newXML()
	rels := d.CreateElement("Relationships")
	rels.CreateAttr("xmlns", nsRels)
	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", relOfficeDocument)
	rel.CreateAttr("Target", "word/document.xml")
	return d
}

func newXML() *etree.Document {
	d := etree.NewDocument()
	d.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return d
}
