package slog

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagecut"
)

// Ensure LoggingExtractor implements pagecut.Extractor.
var _ pagecut.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. The body hash lets
// two runs over the same page be compared without logging content.
type LoggingExtractor struct {
	next   pagecut.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next pagecut.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(html string, pageURL string) (result *pagecut.ExtractResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", pageURL,
			"input_bytes", len(html),
			"duration", time.Since(begin),
		}
		if result != nil {
			attrs = append(attrs,
				"found", result.Found,
				"title", result.Title(),
				"body_bytes", len(result.BodyHTML),
				"body_hash", strconv.FormatUint(xxhash.Sum64String(result.BodyHTML), 16),
			)
		}
		attrs = append(attrs, "err", err)
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(html, pageURL)
}
