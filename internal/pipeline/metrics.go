package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Name:      "searches_total",
			Help:      "Total search pipeline runs",
		},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "crowsnest",
			Name:      "search_duration_seconds",
			Help:      "Duration of full search pipeline runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4m
		},
	)

	postsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Name:      "posts_fetched_total",
			Help:      "Posts returned by source adapters",
		},
		[]string{"platform"},
	)

	highRiskPostsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Name:      "high_risk_posts_total",
			Help:      "Posts that crossed the high-risk score threshold",
		},
	)

	storageErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowsnest",
			Name:      "storage_errors_total",
			Help:      "Failed database writes during pipeline runs",
		},
	)
)
