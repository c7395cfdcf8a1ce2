// Package metrics defines the Prometheus collectors for the query service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all collectors. Construct one per process with a fresh
// registry so tests can build isolated instances.
type Metrics struct {
	QueriesTotal    *prometheus.CounterVec
	QueryDuration   prometheus.Histogram
	RetrievedChunks prometheus.Histogram
}

// Outcome labels for QueriesTotal.
const (
	OutcomeAnswered      = "answered"
	OutcomeRejectedAuth  = "rejected_auth"
	OutcomeRejectedQuota = "rejected_quota"
	OutcomeFailed        = "failed"
)

// New creates and registers all collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kira_queries_total",
				Help: "Total number of query requests by outcome",
			},
			[]string{"outcome"},
		),
		QueryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kira_query_duration_seconds",
				Help:    "End-to-end duration of answered queries",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		RetrievedChunks: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kira_retrieved_chunks",
				Help:    "Number of chunks retrieved per answered query",
				Buckets: []float64{0, 1, 2, 3, 5, 10},
			},
		),
	}
}

// ObserveQuery records one completed query.
func (m *Metrics) ObserveQuery(outcome string, duration time.Duration, chunks int) {
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAnswered {
		m.QueryDuration.Observe(duration.Seconds())
		m.RetrievedChunks.Observe(float64(chunks))
	}
}
