// Package metrics holds the Prometheus collectors for the feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts successful post writes.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emofeed_posts_created_total",
		Help: "Number of posts created",
	})

	// FeedQueries counts feed reads by query identity.
	FeedQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emofeed_feed_queries_total",
		Help: "Number of feed queries served, by query",
	}, []string{"query"})

	// CacheInvalidations counts client cache entries discarded after
	// mutations.
	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emofeed_cache_invalidations_total",
		Help: "Number of query cache invalidations",
	})

	// PagesPrefetched counts hydration snapshots generated, by page.
	PagesPrefetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emofeed_pages_prefetched_total",
		Help: "Number of page hydration snapshots generated, by page",
	}, []string{"page"})
)
