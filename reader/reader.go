// Package reader runs the fetch, extract, render and export pipeline for
// one page.
package reader

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/pagecut"
	"golang.org/x/sync/errgroup"
)

// MarkdownContentType is the MIME type of the Markdown download.
const MarkdownContentType = "text/markdown; charset=utf-8"

// DefaultExportConcurrency is the number of exporters run at once.
const DefaultExportConcurrency = 2

// Ensure Reader implements pagecut.ReadingService at compile time.
var _ pagecut.ReadingService = (*Reader)(nil)

// Reader turns a URL into a Reading. It holds no per-request state, so
// one Reader may serve many requests; the fetcher decides whether those
// may overlap.
type Reader struct {
	fetcher     pagecut.Fetcher
	extractor   pagecut.Extractor
	renderer    pagecut.Renderer
	converter   pagecut.Converter
	exporters   []pagecut.Exporter
	concurrency int
}

// Option configures a Reader.
type Option func(*Reader)

// WithExporters sets the document exporters run for every reading.
func WithExporters(exporters ...pagecut.Exporter) Option {
	return func(r *Reader) {
		r.exporters = exporters
	}
}

// WithConverter enables the Markdown download.
func WithConverter(c pagecut.Converter) Option {
	return func(r *Reader) {
		r.converter = c
	}
}

// WithExportConcurrency limits how many exporters run at once.
func WithExportConcurrency(n int) Option {
	return func(r *Reader) {
		r.concurrency = n
	}
}

// New creates a Reader from its pipeline stages.
func New(
	fetcher pagecut.Fetcher,
	extractor pagecut.Extractor,
	renderer pagecut.Renderer,
	opts ...Option,
) *Reader {
	r := &Reader{
		fetcher:     fetcher,
		extractor:   extractor,
		renderer:    renderer,
		concurrency: DefaultExportConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read fetches rawURL and produces the display HTML and downloads.
//
// A fetch failure is fatal and returned as EUNAVAILABLE. A page without
// recognizable content is not an error: the reading has Found unset and
// its exports contain only the title. Export failures are recorded on the
// affected download and never fail the reading.
func (r *Reader) Read(ctx context.Context, rawURL string, status pagecut.StatusFunc) (*pagecut.Reading, error) {
	if status == nil {
		status = func(pagecut.Status, string) {}
	}

	target, err := ValidateURL(rawURL)
	if err != nil {
		status(pagecut.StatusFailed, pagecut.ErrorMessage(err))
		return nil, err
	}

	status(pagecut.StatusLoading, target)
	html, err := r.fetcher.Fetch(ctx, target)
	if err != nil {
		err = pagecut.Wrap(pagecut.EUNAVAILABLE, err, "failed to load page")
		status(pagecut.StatusFailed, pagecut.ErrorMessage(err))
		return nil, err
	}

	status(pagecut.StatusAnalyzing, "")
	result, err := r.extractor.Extract(html, target)
	if err != nil {
		status(pagecut.StatusFailed, pagecut.ErrorMessage(err))
		return nil, err
	}
	display, err := r.renderer.DisplayHTML(result)
	if err != nil {
		status(pagecut.StatusFailed, pagecut.ErrorMessage(err))
		return nil, err
	}

	reading := &pagecut.Reading{
		URL:   target,
		Title: result.Title(),
		HTML:  display,
		Found: result.Found,
	}

	status(pagecut.StatusExporting, reading.Title)
	reading.Downloads = r.export(ctx, result, reading.Title)
	if r.converter != nil {
		md := r.markdown(result, reading.Title)
		if md.Err == nil {
			reading.Markdown = string(md.Data)
		}
		reading.Downloads = append(reading.Downloads, md)
	}

	status(pagecut.StatusDone, reading.Title)
	return reading, nil
}

// export runs every exporter on the rich text of result. Each download
// carries its own error.
func (r *Reader) export(ctx context.Context, result *pagecut.ExtractResult, title string) []pagecut.Download {
	downloads := make([]pagecut.Download, len(r.exporters))
	for i, e := range r.exporters {
		downloads[i] = pagecut.Download{
			Format:      e.Format(),
			Filename:    pagecut.SuggestFilename(title, e.Format()),
			ContentType: e.ContentType(),
		}
	}
	if len(r.exporters) == 0 {
		return downloads
	}

	doc, err := r.renderer.RichText(result)
	if err != nil {
		for i := range downloads {
			downloads[i].Err = err
		}
		return downloads
	}

	g, ctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, e := range r.exporters {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				downloads[i].Err = err
				return nil
			}
			data, err := e.Export(doc)
			if err != nil {
				downloads[i].Err = pagecut.Wrap(pagecut.EINTERNAL, err, e.Format()+" export failed")
				return nil
			}
			downloads[i].Data = data
			return nil
		})
	}
	_ = g.Wait()
	return downloads
}

// markdown converts the title and body to a Markdown download.
func (r *Reader) markdown(result *pagecut.ExtractResult, title string) pagecut.Download {
	d := pagecut.Download{
		Format:      "md",
		Filename:    pagecut.SuggestFilename(title, "md"),
		ContentType: MarkdownContentType,
	}
	body := ""
	if result.Found {
		md, err := r.converter.Convert(result.BodyHTML)
		if err != nil {
			d.Err = pagecut.Wrap(pagecut.EINTERNAL, err, "markdown conversion failed")
			return d
		}
		body = md
	}
	d.Data = []byte("# " + title + "\n\n" + strings.TrimSpace(body) + "\n")
	return d
}

// ValidateURL trims rawURL and checks that it is an absolute http(s) URL.
func ValidateURL(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", pagecut.Errorf(pagecut.EINVALID, "URL required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", pagecut.Errorf(pagecut.EINVALID, "invalid URL: %q", s)
	}
	return s, nil
}
