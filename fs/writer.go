// Package fs writes reading outputs to a local directory.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/pagecut"
	"gopkg.in/yaml.v3"
)

// frontmatter heads the Markdown file so the source stays traceable.
type frontmatter struct {
	Source  string `yaml:"source"`
	Title   string `yaml:"title"`
	Fetched string `yaml:"fetched"`
}

// FormatMarkdown prefixes Markdown with YAML frontmatter describing the
// reading it came from.
func FormatMarkdown(r *pagecut.Reading, markdown string, fetched time.Time) (string, error) {
	head, err := yaml.Marshal(frontmatter{
		Source:  r.URL,
		Title:   r.Title,
		Fetched: fetched.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString(markdown)
	return b.String(), nil
}

// Ensure Writer implements pagecut.ReadingWriter at compile time.
var _ pagecut.ReadingWriter = (*Writer)(nil)

// Writer writes the display HTML and every successful download of a
// reading into a directory.
type Writer struct {
	baseDir string
	now     func() time.Time
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithClock sets the time source used for the Markdown frontmatter.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string, opts ...WriterOption) *Writer {
	w := &Writer{baseDir: baseDir, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteReading writes <title>.html plus one file per download. Failed
// downloads are skipped. It returns the paths written, in order.
func (w *Writer) WriteReading(ctx context.Context, r *pagecut.Reading) ([]string, error) {
	if r == nil {
		return nil, pagecut.Errorf(pagecut.EINVALID, "reading required")
	}
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var paths []string
	write := func(name string, data []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(w.baseDir, name)
		if err := writeAtomic(path, data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		paths = append(paths, path)
		return nil
	}

	if r.HTML != "" {
		if err := write(pagecut.SuggestFilename(r.Title, "html"), []byte(r.HTML)); err != nil {
			return paths, err
		}
	}

	for _, d := range r.Downloads {
		if d.Err != nil || len(d.Data) == 0 {
			continue
		}
		data := d.Data
		if d.Format == "md" {
			md, err := FormatMarkdown(r, string(d.Data), w.now())
			if err != nil {
				return paths, err
			}
			data = []byte(md)
		}
		name := d.Filename
		if name == "" {
			name = pagecut.SuggestFilename(r.Title, d.Format)
		}
		if err := write(name, data); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// writeAtomic writes data to a temporary file beside path and renames it
// into place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
