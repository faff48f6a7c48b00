package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docassist/docchat/internal/core/domain"
)

// ClientMetrics tracks the sync core: poll outcomes, workflow operations and
// the registry document mix as of the last applied snapshot.
type ClientMetrics struct {
	registry *prometheus.Registry

	pollTotal         *prometheus.CounterVec
	pollDuration      *prometheus.HistogramVec
	operationTotal    *prometheus.CounterVec
	queryDuration     prometheus.Histogram
	registryDocuments *prometheus.GaugeVec
	transcriptLength  prometheus.Gauge
}

func NewClientMetrics() *ClientMetrics {
	registry := prometheus.NewRegistry()

	pollTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "sync",
			Name:      "poll_total",
			Help:      "Total registry refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)
	pollDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "sync",
			Name:      "poll_duration_seconds",
			Help:      "Registry refresh duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	operationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "workflow",
			Name:      "operations_total",
			Help:      "Total workflow operations by kind and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	queryDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "chat",
			Name:      "query_duration_seconds",
			Help:      "Round-trip duration of answer queries in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
	registryDocuments := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "docchat",
			Subsystem: "registry",
			Name:      "documents",
			Help:      "Documents in the current snapshot by lifecycle status.",
		},
		[]string{"status"},
	)
	transcriptLength := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docchat",
			Subsystem: "chat",
			Name:      "transcript_length",
			Help:      "Messages currently held in the session transcript.",
		},
	)

	registry.MustRegister(pollTotal, pollDuration, operationTotal, queryDuration, registryDocuments, transcriptLength)

	return &ClientMetrics{
		registry:          registry,
		pollTotal:         pollTotal,
		pollDuration:      pollDuration,
		operationTotal:    operationTotal,
		queryDuration:     queryDuration,
		registryDocuments: registryDocuments,
		transcriptLength:  transcriptLength,
	}
}

func (m *ClientMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPoll outcomes: success, failure, stale (completion discarded because
// a newer refresh was issued).
func (m *ClientMetrics) RecordPoll(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pollTotal.WithLabelValues(outcome).Inc()
	m.pollDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *ClientMetrics) RecordOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.operationTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *ClientMetrics) ObserveQueryDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.Observe(duration.Seconds())
}

// Record methods tolerate a nil receiver so tests can wire components
// without a metrics registry.
func (m *ClientMetrics) SetRegistryCounts(snapshot domain.Snapshot) {
	if m == nil {
		return
	}
	counts := snapshot.CountByStatus()
	for _, status := range []domain.DocumentStatus{domain.StatusPending, domain.StatusProcessing, domain.StatusReady, domain.StatusFailed} {
		m.registryDocuments.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func (m *ClientMetrics) SetTranscriptLength(n int) {
	if m == nil {
		return
	}
	m.transcriptLength.Set(float64(n))
}
