package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mcat"

// Metrics holds the Prometheus collectors for the API and the generator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInFlight   *prometheus.GaugeVec
	Generations        *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec
	AnswerFallbacks    prometheus.Counter
	SchemaDivergences  prometheus.Counter
}

// NewMetrics registers all collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
			[]string{"route"},
		),
		Generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generator",
				Name:      "generations_total",
				Help:      "Question generation attempts by result",
			},
			[]string{"result"},
		),
		CompletionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generator",
				Name:      "completion_duration_seconds",
				Help:      "Completion service call latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
			},
			[]string{"provider"},
		),
		AnswerFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generator",
				Name:      "answer_fallbacks_total",
				Help:      "Correct answers that could not be resolved and defaulted to the first choice",
			},
		),
		SchemaDivergences: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "generator",
				Name:      "schema_divergences_total",
				Help:      "Built questions that do not match the strict question schema",
			},
		),
	}
}

func (m *Metrics) ObserveGeneration(result string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCompletion(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.CompletionDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) IncAnswerFallback() {
	if m == nil {
		return
	}
	m.AnswerFallbacks.Inc()
}

func (m *Metrics) IncSchemaDivergence() {
	if m == nil {
		return
	}
	m.SchemaDivergences.Inc()
}

// ── HTTP middleware ───────────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware records request count, latency and in-flight requests labelled
// by the matched mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeTemplate(r)

		m.RequestsInFlight.WithLabelValues(route).Inc()
		defer m.RequestsInFlight.WithLabelValues(route).Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
