package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchRequestsTotal     *prometheus.CounterVec
	searchNoCandidatesTotal *prometheus.CounterVec
	searchGraphFilterTotal  *prometheus.CounterVec
	searchDegradedTotal     *prometheus.CounterVec
	searchResultsReturned   *prometheus.HistogramVec
	searchDuration          *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pda",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total completed search requests.",
		},
		[]string{"service", "endpoint"},
	)
	searchNoCandidatesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "search",
			Name:      "no_candidates_total",
			Help:      "Total search requests that found no products.",
		},
		[]string{"service", "endpoint"},
	)
	searchGraphFilterTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "search",
			Name:      "graph_filter_total",
			Help:      "Knowledge-graph filter outcomes per search.",
		},
		[]string{"service", "outcome"},
	)
	searchDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pda",
			Subsystem: "search",
			Name:      "degraded_total",
			Help:      "Search requests that degraded by pipeline stage.",
		},
		[]string{"service", "stage"},
	)
	searchResultsReturned := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "search",
			Name:      "results_returned",
			Help:      "Distribution of ranked results per search response.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
		},
		[]string{"service", "endpoint"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pda",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchRequestsTotal,
		searchNoCandidatesTotal,
		searchGraphFilterTotal,
		searchDegradedTotal,
		searchResultsReturned,
		searchDuration,
	)

	return &HTTPServerMetrics{
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		searchRequestsTotal:     searchRequestsTotal,
		searchNoCandidatesTotal: searchNoCandidatesTotal,
		searchGraphFilterTotal:  searchGraphFilterTotal,
		searchDegradedTotal:     searchDegradedTotal,
		searchResultsReturned:   searchResultsReturned,
		searchDuration:          searchDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/products/"):
		return "/v1/products/{product_id}"
	default:
		return path
	}
}

// RecordSearchObservation is called once per completed search request.
func (m *HTTPServerMetrics) RecordSearchObservation(service, endpoint string, results int, duration time.Duration) {
	m.searchRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.searchResultsReturned.WithLabelValues(service, endpoint).Observe(float64(results))
	m.searchDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if results == 0 {
		m.searchNoCandidatesTotal.WithLabelValues(service, endpoint).Inc()
	}
}

func (m *HTTPServerMetrics) RecordGraphFilter(service string, applied bool) {
	outcome := "skipped"
	if applied {
		outcome = "applied"
	}
	m.searchGraphFilterTotal.WithLabelValues(service, outcome).Inc()
}

// RecordDegraded counts a fallback by stage, e.g. "graph" or "generation".
func (m *HTTPServerMetrics) RecordDegraded(service, stage string) {
	if stage == "" {
		stage = "unknown"
	}
	m.searchDegradedTotal.WithLabelValues(service, stage).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
