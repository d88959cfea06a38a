package pagecut

import "context"

// Exporter renders a RichDocument into a downloadable document.
type Exporter interface {
	// Format names the output, e.g. "docx" or "pdf". It doubles as the
	// file extension.
	Format() string

	// ContentType is the MIME type of the exported bytes.
	ContentType() string

	// Export renders doc. A document without body blocks still produces
	// a valid file containing only the title.
	Export(doc *RichDocument) ([]byte, error)
}

// Download is one exported file offered to the user.
type Download struct {
	Format      string
	Filename    string
	ContentType string
	Data        []byte

	// Err is set when this export failed. Other downloads and the
	// display output are unaffected.
	Err error
}

// Reading is everything the UI host needs to present one extraction.
type Reading struct {
	URL       string
	Title     string
	HTML      string
	Markdown  string
	Found     bool
	Downloads []Download
}

// Status names a step of a reading, reported to the UI host.
type Status string

// Status values in the order a reading passes through them.
const (
	StatusLoading   Status = "loading"
	StatusAnalyzing Status = "analyzing"
	StatusExporting Status = "exporting"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// StatusFunc is called as a reading progresses.
type StatusFunc func(status Status, detail string)

// ReadingWriter persists the outputs of a reading. It returns the paths
// or names of what was written.
type ReadingWriter interface {
	WriteReading(ctx context.Context, r *Reading) ([]string, error)
}

// ReadingService turns a page URL into a Reading, reporting progress to
// status as it goes.
type ReadingService interface {
	Read(ctx context.Context, rawURL string, status StatusFunc) (*Reading, error)
}
