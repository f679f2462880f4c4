package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	RankingCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "storeassist",
			Name:      "ranking_candidates",
			Help:      "Number of candidates scored per ranking call",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	RankingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "storeassist",
			Name:      "ranking_duration_seconds",
			Help:      "Time spent embedding and scoring candidates",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storeassist",
			Name:      "chat_requests_total",
			Help:      "Total assistant questions by prompt mode and outcome",
		},
		[]string{"mode", "status"},
	)

	BackfillRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storeassist",
			Name:      "backfill_requests_total",
			Help:      "Total supplier backfill requests published",
		},
		[]string{"status"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers retrieval pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RankingCandidates)
	prometheus.MustRegister(RankingDuration)
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(BackfillRequestsTotal)
	pipelineMetricsRegistered = true
}
