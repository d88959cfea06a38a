// Package prometheus records reading metrics with the Prometheus client.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/pagecut"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ensure ReadingService implements pagecut.ReadingService at compile time.
var _ pagecut.ReadingService = (*ReadingService)(nil)

// Outcome label values for pagecut_readings_total.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// ReadingService wraps a ReadingService and records one observation per
// reading. Metrics live in their own registry so several instances can
// coexist in one process.
type ReadingService struct {
	next     pagecut.ReadingService
	registry *prometheus.Registry

	readings       *prometheus.CounterVec
	duration       prometheus.Histogram
	exportFailures *prometheus.CounterVec
}

// NewReadingService creates a new ReadingService.
func NewReadingService(next pagecut.ReadingService) *ReadingService {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &ReadingService{
		next:     next,
		registry: reg,
		readings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pagecut_readings_total",
			Help: "Readings by outcome (found, not_found, failed).",
		}, []string{"outcome", "error_code"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagecut_reading_duration_seconds",
			Help:    "Time to fetch, extract and export one page.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		}),
		exportFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pagecut_export_failures_total",
			Help: "Downloads that failed to export, by format.",
		}, []string{"format"}),
	}
}

// Read delegates to the wrapped service and records the outcome.
func (s *ReadingService) Read(ctx context.Context, rawURL string, status pagecut.StatusFunc) (*pagecut.Reading, error) {
	begin := time.Now()
	reading, err := s.next.Read(ctx, rawURL, status)
	s.duration.Observe(time.Since(begin).Seconds())

	switch {
	case err != nil:
		s.readings.WithLabelValues(OutcomeFailed, pagecut.ErrorCode(err)).Inc()
		return nil, err
	case reading.Found:
		s.readings.WithLabelValues(OutcomeFound, "").Inc()
	default:
		s.readings.WithLabelValues(OutcomeNotFound, "").Inc()
	}
	for _, d := range reading.Downloads {
		if d.Err != nil {
			s.exportFailures.WithLabelValues(d.Format).Inc()
		}
	}
	return reading, nil
}

// Registry returns the registry holding the reading metrics.
func (s *ReadingService) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the reading metrics in the Prometheus exposition format.
func (s *ReadingService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
