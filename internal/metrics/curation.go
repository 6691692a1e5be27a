package metrics

import "github.com/prometheus/client_golang/prometheus"

// Curation Prometheus metrics.
var (
	CurationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "curation_runs_total",
			Help:      "Total number of curation pipeline runs",
		},
		[]string{"source", "status"}, // source: inline/feed; status: ok/error
	)

	CurationRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "curator",
			Name:      "curation_run_duration_seconds",
			Help:      "Curation pipeline run duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"source"},
	)

	CurationStageRecords = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "curator",
			Name:      "curation_stage_records",
			Help:      "Records remaining after each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"stage"},
	)

	CurationDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "curation_dropped_records_total",
			Help:      "Records dropped because their rank was undefined",
		},
		[]string{"reason"},
	)
)

var curationMetricsRegistered bool

// RegisterCurationMetrics registers Prometheus curation metrics. Must be called once from main.
func RegisterCurationMetrics() {
	if curationMetricsRegistered {
		return
	}
	prometheus.MustRegister(CurationRunsTotal)
	prometheus.MustRegister(CurationRunDuration)
	prometheus.MustRegister(CurationStageRecords)
	prometheus.MustRegister(CurationDroppedTotal)
	curationMetricsRegistered = true
}
