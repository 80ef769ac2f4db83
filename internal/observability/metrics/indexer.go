package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IndexerMetrics struct {
	registry *prometheus.Registry

	indexTotal    *prometheus.CounterVec
	indexDuration *prometheus.HistogramVec
	indexInFlight prometheus.Gauge
	reindexedDocs prometheus.Counter
}

func NewIndexerMetrics(service string) *IndexerMetrics {
	registry := prometheus.NewRegistry()

	indexTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "indexer",
			Name:      "product_index_total",
			Help:      "Total indexed products by status.",
		},
		[]string{"service", "status"},
	)
	indexDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "indexer",
			Name:      "product_index_duration_seconds",
			Help:      "Product indexing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	indexInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pda",
			Subsystem: "indexer",
			Name:      "product_index_in_flight",
			Help:      "Number of in-flight product indexing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reindexedDocs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "indexer",
			Name:      "startup_reindexed_total",
			Help:      "Products reindexed during startup backfill.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(indexTotal, indexDuration, indexInFlight, reindexedDocs)

	return &IndexerMetrics{
		registry:      registry,
		indexTotal:    indexTotal,
		indexDuration: indexDuration,
		indexInFlight: indexInFlight,
		reindexedDocs: reindexedDocs,
	}
}

func (m *IndexerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *IndexerMetrics) StartProduct() {
	m.indexInFlight.Inc()
}

func (m *IndexerMetrics) FinishProduct(service string, duration time.Duration, err error) {
	m.indexInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.indexTotal.WithLabelValues(service, status).Inc()
	m.indexDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *IndexerMetrics) AddReindexed(count int) {
	if count <= 0 {
		return
	}
	m.reindexedDocs.Add(float64(count))
}
