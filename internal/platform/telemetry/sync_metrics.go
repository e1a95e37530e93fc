package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync cycle outcomes.
const (
	OutcomeNoChanges = "no_changes"
	OutcomeUpdates   = "updates"
	OutcomeSkipped   = "skipped"
	OutcomeOverlap   = "overlap"
)

// SyncMetrics exposes reconciliation activity on /-/metrics.
type SyncMetrics struct {
	cycles      *prometheus.CounterVec
	duration    prometheus.Histogram
	updates     *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	pending     prometheus.Gauge
	quotes      prometheus.Gauge
}

// NewSyncMetrics registers the sync collectors with reg.
// A nil reg uses the default Prometheus registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &SyncMetrics{
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quote_sync",
			Name:      "cycles_total",
			Help:      "Reconciliation cycles by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quote_sync",
			Name:      "cycle_duration_seconds",
			Help:      "Time spent fetching and comparing the remote collection.",
			Buckets:   prometheus.DefBuckets,
		}),
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quote_sync",
			Name:      "remote_updates_total",
			Help:      "Remote quotes found to be new or updated.",
		}, []string{"kind"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quote_sync",
			Name:      "resolutions_total",
			Help:      "User decisions on sync batches and items.",
		}, []string{"decision"}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quote_sync",
			Name:      "pending_batches",
			Help:      "Sync batches awaiting a decision.",
		}),
		quotes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quote_sync",
			Name:      "stored_quotes",
			Help:      "Quotes in the local collection after the last save.",
		}),
	}
}

// ObserveCycle records one finished cycle.
func (m *SyncMetrics) ObserveCycle(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.cycles.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// AddUpdates counts new and updated remote quotes found by a cycle.
func (m *SyncMetrics) AddUpdates(newCount, updatedCount int) {
	if m == nil {
		return
	}

	m.updates.WithLabelValues("new").Add(float64(newCount))
	m.updates.WithLabelValues("updated").Add(float64(updatedCount))
}

// ObserveResolution counts a decision such as accept_all, ignore, accept or reject.
func (m *SyncMetrics) ObserveResolution(decision string) {
	if m == nil {
		return
	}

	m.resolutions.WithLabelValues(decision).Inc()
}

// SetPending reports the number of open batches.
func (m *SyncMetrics) SetPending(n int) {
	if m == nil {
		return
	}

	m.pending.Set(float64(n))
}

// SetStoredQuotes reports the local collection size.
func (m *SyncMetrics) SetStoredQuotes(n int) {
	if m == nil {
		return
	}

	m.quotes.Set(float64(n))
}
