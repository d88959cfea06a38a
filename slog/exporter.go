package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pagecut"
)

// Ensure LoggingExporter implements pagecut.Exporter.
var _ pagecut.Exporter = (*LoggingExporter)(nil)

// LoggingExporter wraps an Exporter with logging.
type LoggingExporter struct {
	next   pagecut.Exporter
	logger *slog.Logger
}

// NewLoggingExporter creates a new LoggingExporter.
func NewLoggingExporter(next pagecut.Exporter, logger *slog.Logger) *LoggingExporter {
	return &LoggingExporter{next: next, logger: logger}
}

// Format delegates to the wrapped exporter.
func (e *LoggingExporter) Format() string {
	return e.next.Format()
}

// ContentType delegates to the wrapped exporter.
func (e *LoggingExporter) ContentType() string {
	return e.next.ContentType()
}

// Export delegates to the wrapped exporter and logs size and duration.
func (e *LoggingExporter) Export(doc *pagecut.RichDocument) (data []byte, err error) {
	defer func(begin time.Time) {
		e.logger.Info("export",
			"format", e.next.Format(),
			"blocks", len(doc.Blocks),
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Export(doc)
}
