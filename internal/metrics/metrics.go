// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedsTotal           *prometheus.CounterVec
	articlesTotal        *prometheus.CounterVec
	duplicateClaimsTotal *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	permitWaitSeconds    *prometheus.HistogramVec
	indexedArticlesGauge prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors. It is safe to call
// multiple times.
func Init() {
	once.Do(func() {
		feedsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregator_feeds_total",
				Help: "Total number of feeds processed, labeled by status.",
			},
			[]string{"status"},
		)

		articlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregator_articles_total",
				Help: "Total number of articles processed, labeled by status.",
			},
			[]string{"status"},
		)

		duplicateClaimsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregator_duplicate_claims_total",
				Help: "URLs skipped because another job already claimed them.",
			},
			[]string{"level"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aggregator_fetch_duration_seconds",
				Help:    "Histogram of article fetch latencies, labeled by server.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"server"},
		)

		permitWaitSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aggregator_permit_wait_seconds",
				Help:    "Histogram of per-server permit wait durations.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"server"},
		)

		indexedArticlesGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "aggregator_indexed_articles",
				Help: "Number of canonical articles fed to the index at finalize.",
			},
		)
	})
}

// FeedProcessed increments the feed counter for a status ("ok" or
// "failed"). Lost claims are counted by DuplicateSkipped instead.
func FeedProcessed(status string) {
	if feedsTotal != nil {
		feedsTotal.WithLabelValues(status).Inc()
	}
}

// ArticleProcessed increments the article counter for a status ("ok" or
// "failed"). Lost claims are counted by DuplicateSkipped instead.
func ArticleProcessed(status string) {
	if articlesTotal != nil {
		articlesTotal.WithLabelValues(status).Inc()
	}
}

// DuplicateSkipped counts a claim lost at the given level ("feed" or
// "article").
func DuplicateSkipped(level string) {
	if duplicateClaimsTotal != nil {
		duplicateClaimsTotal.WithLabelValues(level).Inc()
	}
}

// ObserveFetchDuration records one article fetch latency.
func ObserveFetchDuration(server string, d time.Duration) {
	if fetchDurationSeconds != nil {
		fetchDurationSeconds.WithLabelValues(server).Observe(d.Seconds())
	}
}

// ObservePermitWait records how long an article job waited for its
// per-server permit.
func ObservePermitWait(server string, d time.Duration) {
	if permitWaitSeconds != nil {
		permitWaitSeconds.WithLabelValues(server).Observe(d.Seconds())
	}
}

// SetIndexedArticles records the finalized index size.
func SetIndexedArticles(n int) {
	if indexedArticlesGauge != nil {
		indexedArticlesGauge.Set(float64(n))
	}
}
