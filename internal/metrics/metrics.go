// Package metrics exposes Prometheus instrumentation for imports and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meltforce/coachlog/internal/ingest"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry          *prometheus.Registry
	imports           *prometheus.CounterVec
	exercisesImported prometheus.Counter
	videosUploaded    prometheus.Counter
	httpDuration      *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coachlog",
			Name:      "program_imports_total",
			Help:      "Program import attempts by outcome status and detected layout.",
		}, []string{"status", "layout"}),
		exercisesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coachlog",
			Name:      "exercises_imported_total",
			Help:      "Exercises written by program imports.",
		}),
		videosUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coachlog",
			Name:      "videos_uploaded_total",
			Help:      "Exercise videos stored.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coachlog",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.imports, m.exercisesImported, m.videosUploaded, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveImport records one import attempt. A nil result counts as an error.
func (m *Metrics) ObserveImport(res *ingest.Result, err error) {
	if err != nil || res == nil {
		m.imports.WithLabelValues("error", "unknown").Inc()
		return
	}
	layout := res.Layout
	if layout == "" {
		layout = "unknown"
	}
	m.imports.WithLabelValues(res.Status, layout).Inc()
	m.exercisesImported.Add(float64(res.ExercisesInserted))
}

// ObserveVideo records a stored video.
func (m *Metrics) ObserveVideo() {
	m.videosUploaded.Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
