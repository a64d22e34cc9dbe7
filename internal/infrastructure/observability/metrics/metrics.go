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

// Upstream call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNoData      = "no_data"
	OutcomeError       = "error"
	OutcomeDecodeError = "decode_error"
)

// Metrics bundles prometheus collectors used by the web front.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RequestDurationSec  *prometheus.HistogramVec
	UpstreamRequests    *prometheus.CounterVec
	UpstreamDurationSec *prometheus.HistogramVec
	PagesRendered       *prometheus.CounterVec
	RateLimitDropped    prometheus.Counter
	PanicsRecovered     prometheus.Counter
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quickread_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quickread_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quickread_upstream_requests_total",
			Help: "Total number of requests to the filings API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quickread_upstream_request_duration_seconds",
			Help:    "Filings API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		PagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quickread_pages_rendered_total",
			Help: "Total number of rendered pages by page and state.",
		}, []string{"page", "state"}),
		RateLimitDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickread_ratelimit_dropped_total",
			Help: "Total number of requests dropped by rate limiter.",
		}),
		PanicsRecovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickread_panics_recovered_total",
			Help: "Total number of panics recovered in HTTP handlers.",
		}),
	}

	m.registry = registry
	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.UpstreamRequests,
		m.UpstreamDurationSec,
		m.PagesRendered,
		m.RateLimitDropped,
		m.PanicsRecovered,
	)

	return m
}

// NewDiscard creates metrics on a private registry. Useful in tests and when
// metrics are disabled but components still expect a *Metrics.
func NewDiscard() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream records one call to the filings API.
func (m *Metrics) ObserveUpstream(endpoint, outcome string, duration time.Duration) {
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDurationSec.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// PageRendered records the state a page was rendered in.
func (m *Metrics) PageRendered(page, state string) {
	m.PagesRendered.WithLabelValues(page, state).Inc()
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := normalizeRoute(r.URL.Path)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

func normalizeRoute(path string) string {
	switch {
	case path == "/":
		return "/"
	case path == "/embed" || path == "/embed/":
		return "/embed"
	case path == "/embed/filings":
		return "/embed/filings"
	case strings.HasPrefix(path, "/static/"):
		return "/static/*"
	case path == "/healthz" || path == "/readyz" || path == "/metrics":
		return path
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Hijack passes connection upgrades through wrapped ResponseWriter.
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// Flush keeps streaming behavior for handlers that require it.
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
