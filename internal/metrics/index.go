package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keyword index Prometheus metrics.
var (
	IndexRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recipedex",
			Name:      "index_rebuilds_total",
			Help:      "Total keyword index rebuilds",
		},
		[]string{"status"}, // "success" / "error"
	)

	IndexRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recipedex",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Keyword index rebuild duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.25, 1, 5, 30},
		},
	)

	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "recipedex",
			Name:      "index_documents",
			Help:      "Documents in the live keyword index snapshot",
		},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers Prometheus index metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(IndexRebuildDuration)
	prometheus.MustRegister(IndexDocuments)
	indexMetricsRegistered = true
}
