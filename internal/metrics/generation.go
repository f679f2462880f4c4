package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storeassist",
			Name:      "generation_requests_total",
			Help:      "Total number of generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storeassist",
			Name:      "generation_request_duration_seconds",
			Help:      "Generation request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storeassist",
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	GenerationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storeassist",
			Name:      "generation_errors_total",
			Help:      "Total generation errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	GenerationBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "storeassist",
			Name:      "generation_budget_tokens_remaining",
			Help:      "Remaining generation token budget",
		},
		[]string{"provider", "period"},
	)
)

var genMetricsRegistered bool

// RegisterGenerationMetrics registers Prometheus generation metrics. Must be called once from main.
func RegisterGenerationMetrics() {
	if genMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationTokensTotal)
	prometheus.MustRegister(GenerationErrorsTotal)
	prometheus.MustRegister(GenerationBudgetTokensRemaining)
	genMetricsRegistered = true
}
