package metrics

import "github.com/prometheus/client_golang/prometheus"

// Feed storage and batch Prometheus metrics.
var (
	FeedOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "feed_operations_total",
			Help:      "Total number of feed storage operations",
		},
		[]string{"op", "status"}, // op: put/get/delete/list
	)

	FeedRecordsStored = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "curator",
			Name:      "feed_records_stored",
			Help:      "Number of records written per feed replacement",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	BatchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "batch_items_total",
			Help:      "Total number of batch curation items by outcome",
		},
		[]string{"status"},
	)

	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "auth_rejections_total",
			Help:      "Total number of requests rejected by API key auth",
		},
		[]string{"reason"}, // missing/scheme/key
	)
)

var feedMetricsRegistered bool

// RegisterFeedMetrics registers Prometheus feed, batch and auth metrics. Must be called once from main.
func RegisterFeedMetrics() {
	if feedMetricsRegistered {
		return
	}
	prometheus.MustRegister(FeedOperationsTotal)
	prometheus.MustRegister(FeedRecordsStored)
	prometheus.MustRegister(BatchItemsTotal)
	prometheus.MustRegister(AuthRejectionsTotal)
	feedMetricsRegistered = true
}

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// StatusLabel maps an error to a status label.
func StatusLabel(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
