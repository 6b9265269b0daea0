package stealth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics counts scanner activity. A nil *ScanMetrics records nothing.
type ScanMetrics struct {
	candidates   prometheus.Counter
	matches      prometheus.Counter
	decodeErrors prometheus.Counter
	duration     prometheus.Histogram
}

// NewScanMetrics creates the scanner collectors and registers them with reg
// when reg is non-nil.
func NewScanMetrics(reg prometheus.Registerer) *ScanMetrics {
	m := &ScanMetrics{
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stealth",
			Subsystem: "scan",
			Name:      "candidates_total",
			Help:      "Candidate outputs checked against the identity.",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stealth",
			Subsystem: "scan",
			Name:      "matches_total",
			Help:      "Candidate outputs that belong to the identity.",
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stealth",
			Subsystem: "scan",
			Name:      "decode_errors_total",
			Help:      "Candidate outputs skipped because a key did not decode.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stealth",
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Wall time of a batch scan.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.candidates, m.matches, m.decodeErrors, m.duration)
	}

	return m
}

func (m *ScanMetrics) candidate() {
	if m != nil {
		m.candidates.Inc()
	}
}

func (m *ScanMetrics) match() {
	if m != nil {
		m.matches.Inc()
	}
}

func (m *ScanMetrics) decodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *ScanMetrics) observe(start time.Time) {
	if m != nil {
		m.duration.Observe(time.Since(start).Seconds())
	}
}
