// Package metrics owns the Prometheus instruments shared by the services.
// A single Collector is created at bootstrap and injected; nothing in the
// codebase touches the default registry directly, which keeps unit tests
// hermetic when they pass their own registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector is the slice of instrumentation the services need. Methods never
// fail and never block.
type Collector interface {
	DocumentIngested(tenantId string)
	DocumentVectorized(tenantId string, chunks int, elapsed time.Duration)
	VectorizationFailed(tenantId string)
	ChatStreamStarted()
	ChatStreamFinished(outcome string, elapsed time.Duration)
	AnalyticsUpdate(operation string)
}

type promCollector struct {
	documentsIngested    *prometheus.CounterVec
	documentsVectorized  *prometheus.CounterVec
	chunksStored         *prometheus.CounterVec
	vectorizationSeconds prometheus.Histogram
	vectorizationErrors  *prometheus.CounterVec
	chatActiveStreams    prometheus.Gauge
	chatStreamsTotal     *prometheus.CounterVec
	chatDurationSeconds  *prometheus.HistogramVec
	analyticsUpdates     *prometheus.CounterVec
}

// NewCollector registers every instrument against reg.
func NewCollector(reg prometheus.Registerer) Collector {
	factory := promauto.With(reg)

	return &promCollector{
		documentsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docpilot",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Documents accepted for ingestion, partitioned by tenant.",
		}, []string{"tenant"}),

		documentsVectorized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docpilot",
			Subsystem: "ingest",
			Name:      "documents_vectorized_total",
			Help:      "Documents whose chunks finished embedding, partitioned by tenant.",
		}, []string{"tenant"}),

		chunksStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docpilot",
			Subsystem: "ingest",
			Name:      "chunks_stored_total",
			Help:      "Chunk records written to the vector store, partitioned by tenant.",
		}, []string{"tenant"}),

		vectorizationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docpilot",
			Subsystem: "ingest",
			Name:      "vectorization_seconds",
			Help:      "Wall-clock time from picking up an embed job to chunks stored.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),

		vectorizationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docpilot",
			Subsystem: "ingest",
			Name:      "vectorization_errors_total",
			Help:      "Embed jobs that ended in vector_status=error, partitioned by tenant.",
		}, []string{"tenant"}),

		chatActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "docpilot",
			Subsystem: "chat",
			Name:      "active_streams",
			Help:      "Chat SSE streams currently open.",
		}),

		chatStreamsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docpilot",
			Subsystem: "chat",
			Name:      "streams_total",
			Help:      "Chat streams completed, partitioned by outcome (ok, error, cancelled).",
		}, []string{"outcome"}),

		chatDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docpilot",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Duration of chat streams from request to terminal marker.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),

		analyticsUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docpilot",
			Subsystem: "analytics",
			Name:      "updates_total",
			Help:      "Snapshot mutations applied, partitioned by operation.",
		}, []string{"operation"}),
	}
}

func (c *promCollector) DocumentIngested(tenantId string) {
	c.documentsIngested.WithLabelValues(tenantId).Inc()
}

func (c *promCollector) DocumentVectorized(tenantId string, chunks int, elapsed time.Duration) {
	c.documentsVectorized.WithLabelValues(tenantId).Inc()
	c.chunksStored.WithLabelValues(tenantId).Add(float64(chunks))
	c.vectorizationSeconds.Observe(elapsed.Seconds())
}

func (c *promCollector) VectorizationFailed(tenantId string) {
	c.vectorizationErrors.WithLabelValues(tenantId).Inc()
}

func (c *promCollector) ChatStreamStarted() {
	c.chatActiveStreams.Inc()
}

func (c *promCollector) ChatStreamFinished(outcome string, elapsed time.Duration) {
	c.chatActiveStreams.Dec()
	c.chatStreamsTotal.WithLabelValues(outcome).Inc()
	c.chatDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (c *promCollector) AnalyticsUpdate(operation string) {
	c.analyticsUpdates.WithLabelValues(operation).Inc()
}

// Nop returns a collector that discards everything. Used by tests that do
// not assert on metrics.
func Nop() Collector { return nopCollector{} }

type nopCollector struct{}

func (nopCollector) DocumentIngested(string)                        {}
func (nopCollector) DocumentVectorized(string, int, time.Duration)  {}
func (nopCollector) VectorizationFailed(string)                     {}
func (nopCollector) ChatStreamStarted()                             {}
func (nopCollector) ChatStreamFinished(string, time.Duration)       {}
func (nopCollector) AnalyticsUpdate(string)                         {}
