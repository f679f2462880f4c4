package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/storeassist/internal/domain"
)

// HTTP API Prometheus metrics, labelled by chi route pattern.
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storeassist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route",
			// Chat requests wait on generation, so the tail goes past 10s.
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storeassist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storeassist",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)

	HTTPGenerationTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storeassist",
			Subsystem: "http",
			Name:      "generation_tokens_total",
			Help:      "Generation tokens spent while serving each route",
		},
		[]string{"route"},
	)
)

var httpMetricsRegistered bool

// RegisterHTTPMetrics registers the HTTP API metrics. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestsInFlight)
	prometheus.MustRegister(HTTPGenerationTokens)
	httpMetricsRegistered = true
}

// HTTPMiddleware records latency, status and generation token spend per route.
// It installs a GenerationUsage in the request context so handlers and
// generators below it accumulate into the same collector.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ctx, usage := domain.UsageContext(r.Context())
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routeLabel(r)
		code := strconv.Itoa(status)

		HTTPRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
		if usage.Used {
			HTTPGenerationTokens.WithLabelValues(route).Add(float64(usage.TotalTokens))
		}
	})
}

// routeLabel uses the matched chi pattern so path parameters do not
// explode label cardinality. Unmatched requests share one label.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}
