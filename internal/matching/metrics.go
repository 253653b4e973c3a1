// internal/matching/metrics.go
// Prometheus metrics for the matching engine

package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	likesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymmatch_likes_total",
		Help: "Total likes sent, by kind",
	}, []string{"kind"})

	skipsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymmatch_skips_total",
		Help: "Total skips recorded",
	})

	matchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymmatch_matches_accepted_total",
		Help: "Total matches accepted",
	})

	unmatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymmatch_unmatches_total",
		Help: "Total matches dissolved",
	})

	compatibilityScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gymmatch_compatibility_score",
		Help:    "Distribution of computed compatibility scores",
		Buckets: prometheus.LinearBuckets(50, 10, 6),
	})

	discoverDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gymmatch_discover_duration_seconds",
		Help:    "Latency of discovery requests",
		Buckets: prometheus.DefBuckets,
	})
)
