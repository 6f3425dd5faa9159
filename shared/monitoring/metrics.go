package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommentsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mention_miner_comments_fetched_total",
			Help: "Total number of top-level comments retrieved",
		},
	)

	YouTubeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mention_miner_youtube_requests_total",
			Help: "Total number of YouTube Data API requests",
		},
		[]string{"call", "status"},
	)

	AnalyzerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mention_miner_analyzer_requests_total",
			Help: "Total number of generative model requests",
		},
		[]string{"provider", "status"},
	)

	MentionsMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mention_miner_ledger_rows_merged_total",
			Help: "Ledger rows touched by merges",
		},
		[]string{"kind"},
	)

	LedgerRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mention_miner_ledger_rows",
			Help: "Number of rows in the ledger after the last write",
		},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mention_miner_run_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)
