package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchesTotal      *prometheus.CounterVec
	searchHitTotal     *prometheus.CounterVec
	searchEmptyTotal   *prometheus.CounterVec
	outOfDomainTotal   *prometheus.CounterVec
	temporalTotal      *prometheus.CounterVec
	retrievedPassages  *prometheus.HistogramVec
	searchDuration     *prometheus.HistogramVec
	corpusReloadsTotal *prometheus.CounterVec
	corpusDocuments    *prometheus.GaugeVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corpus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "corpus",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total completed search requests.",
		},
		[]string{"service", "endpoint"},
	)
	searchHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "search",
			Name:      "hit_total",
			Help:      "Total searches returning at least one passage.",
		},
		[]string{"service", "endpoint"},
	)
	searchEmptyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "search",
			Name:      "empty_total",
			Help:      "Total searches returning no passages.",
		},
		[]string{"service", "endpoint"},
	)
	outOfDomainTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "search",
			Name:      "out_of_domain_total",
			Help:      "Total queries rejected as out of domain.",
		},
		[]string{"service", "endpoint"},
	)
	temporalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "search",
			Name:      "temporal_total",
			Help:      "Total queries re-ranked by publication date.",
		},
		[]string{"service", "endpoint"},
	)
	retrievedPassages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corpus",
			Subsystem: "search",
			Name:      "retrieved_passages",
			Help:      "Distribution of passages returned per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corpus",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	corpusReloadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpus",
			Subsystem: "index",
			Name:      "reloads_total",
			Help:      "Total corpus reloads by status.",
		},
		[]string{"service", "status"},
	)
	corpusDocuments := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "corpus",
			Subsystem: "index",
			Name:      "documents",
			Help:      "Documents in the active corpus snapshot.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchesTotal,
		searchHitTotal,
		searchEmptyTotal,
		outOfDomainTotal,
		temporalTotal,
		retrievedPassages,
		searchDuration,
		corpusReloadsTotal,
		corpusDocuments,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		searchesTotal:      searchesTotal,
		searchHitTotal:     searchHitTotal,
		searchEmptyTotal:   searchEmptyTotal,
		outOfDomainTotal:   outOfDomainTotal,
		temporalTotal:      temporalTotal,
		retrievedPassages:  retrievedPassages,
		searchDuration:     searchDuration,
		corpusReloadsTotal: corpusReloadsTotal,
		corpusDocuments:    corpusDocuments,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
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
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordSearch(service, endpoint string, passageCount int, outOfDomain, temporal bool, duration time.Duration) {
	m.searchesTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievedPassages.WithLabelValues(service, endpoint).Observe(float64(passageCount))
	m.searchDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if outOfDomain {
		m.outOfDomainTotal.WithLabelValues(service, endpoint).Inc()
	}
	if temporal {
		m.temporalTotal.WithLabelValues(service, endpoint).Inc()
	}
	if passageCount > 0 {
		m.searchHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.searchEmptyTotal.WithLabelValues(service, endpoint).Inc()
}

func (m *HTTPServerMetrics) RecordCorpusReload(service string, documents int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.corpusReloadsTotal.WithLabelValues(service, status).Inc()
	if err == nil {
		m.corpusDocuments.WithLabelValues(service).Set(float64(documents))
	}
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
