// Package observability holds the Prometheus collectors and OpenTelemetry
// tracer shared by the service layers.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// FeedCacheLookups counts global feed cache lookups by outcome.
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_feed_cache_lookups_total",
		Help: "Global feed cache lookups by result",
	}, []string{"result"})

	// FollowMutations counts follow and unfollow requests by whether they
	// changed an edge.
	FollowMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_follow_mutations_total",
		Help: "Follow and unfollow requests by action and outcome",
	}, []string{"action", "outcome"})

	// PostsCreated counts successfully published posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_posts_created_total",
		Help: "Total number of posts created",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordFollowMutation labels the outcome as changed or noop.
func RecordFollowMutation(action string, changed bool) {
	outcome := "noop"
	if changed {
		outcome = "changed"
	}
	FollowMutations.WithLabelValues(action, outcome).Inc()
}
