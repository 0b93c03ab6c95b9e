// Package client is the view-facing query runtime: cache-backed reads with
// loading/error result states, and the mutation reconciler for the single
// write path. It owns no data; the cache holds copies and a fresh server
// query always supersedes them.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"emofeed/cache"
	"emofeed/feeds"
	"emofeed/hydrate"
	"emofeed/metrics"
	"emofeed/models"

	log "github.com/sirupsen/logrus"
)

// Fetcher is the transport behind the client: either direct service calls
// in-process or HTTP against the feed server.
type Fetcher interface {
	FeedAll(ctx context.Context) ([]models.PostWithAuthor, error)
	FeedByAuthor(ctx context.Context, userID string) ([]models.PostWithAuthor, error)
	FeedByID(ctx context.Context, postID string) (models.PostWithAuthor, error)
	Profile(ctx context.Context, username string) (models.Author, error)
	CreatePost(ctx context.Context, content string) (models.Post, error)
}

// Result is the state of one query as a view sees it: exactly one of a
// settled value, a loading render, or a view-local error render.
type Result[T any] struct {
	Data      T
	IsLoading bool
	IsError   bool
}

type Client struct {
	cache   *cache.QueryCache
	fetcher Fetcher

	mu       sync.Mutex
	inflight map[string]struct{}
	failed   map[string]struct{}
}

func NewClient(queryCache *cache.QueryCache, fetcher Fetcher) *Client {
	return &Client{
		cache:    queryCache,
		fetcher:  fetcher,
		inflight: make(map[string]struct{}),
		failed:   make(map[string]struct{}),
	}
}

// Seed loads a page hydration snapshot into the cache, so the first read of
// each seeded query is an immediate cache hit.
func (c *Client) Seed(snapshot hydrate.Snapshot) {
	c.cache.Seed(snapshot)
}

// Invalidate discards a cached query result and clears any settled error for
// the key, forcing the next read to refetch from source. Only the mutation
// reconciler invalidates the global feed key.
func (c *Client) Invalidate(key string) {
	c.cache.Invalidate(key)

	c.mu.Lock()
	delete(c.failed, key)
	c.mu.Unlock()

	metrics.CacheInvalidations.Inc()
}

func (c *Client) FeedAll(ctx context.Context) Result[[]models.PostWithAuthor] {
	return query(c, ctx, feeds.KeyAll(), c.fetcher.FeedAll)
}

func (c *Client) FeedByAuthor(ctx context.Context, userID string) Result[[]models.PostWithAuthor] {
	return query(c, ctx, feeds.KeyByAuthor(userID), func(ctx context.Context) ([]models.PostWithAuthor, error) {
		return c.fetcher.FeedByAuthor(ctx, userID)
	})
}

func (c *Client) FeedByID(ctx context.Context, postID string) Result[models.PostWithAuthor] {
	return query(c, ctx, feeds.KeyByID(postID), func(ctx context.Context) (models.PostWithAuthor, error) {
		return c.fetcher.FeedByID(ctx, postID)
	})
}

func (c *Client) Profile(ctx context.Context, username string) Result[models.Author] {
	return query(c, ctx, feeds.KeyProfile(username), func(ctx context.Context) (models.Author, error) {
		return c.fetcher.Profile(ctx, username)
	})
}

// query reads through the cache. A hit renders immediately; a miss starts at
// most one background fetch per key and renders loading until it settles. A
// settled failure renders as a view-local error until the key is
// invalidated.
func query[T any](c *Client, ctx context.Context, key string, fetch func(context.Context) (T, error)) Result[T] {
	if entry, ok := c.cache.Get(key); ok {
		if data, ok := coerce[T](entry.Data); ok {
			return Result[T]{Data: data}
		}
		// Unusable entry shape; treat as a miss.
		c.Invalidate(key)
	}

	c.mu.Lock()
	if _, failed := c.failed[key]; failed {
		c.mu.Unlock()
		return Result[T]{IsError: true}
	}
	if _, running := c.inflight[key]; running {
		c.mu.Unlock()
		return Result[T]{IsLoading: true}
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	go func() {
		// Detached from the caller: a consumer that goes away must not
		// cancel the settle, and the late response is simply never read.
		data, err := fetch(context.WithoutCancel(ctx))

		// Not-found settles as an empty success: the view renders a
		// no-content state from the zero value, never an error.
		if errors.Is(err, models.ErrNotFound) {
			err = nil
		}

		c.mu.Lock()
		delete(c.inflight, key)
		if err != nil {
			c.failed[key] = struct{}{}
		}
		c.mu.Unlock()

		if err != nil {
			log.WithFields(log.Fields{
				"key":   key,
				"error": err,
			}).Warn("Query failed")
			return
		}
		c.cache.Set(key, data)
	}()

	return Result[T]{IsLoading: true}
}

// coerce recovers the typed value from a cache entry. Entries seeded from a
// JSON hydration payload hold generic decoded shapes; those are coerced
// through a JSON round-trip on first read.
func coerce[T any](value any) (T, bool) {
	if data, ok := value.(T); ok {
		return data, true
	}

	var data T
	raw, err := json.Marshal(value)
	if err != nil {
		return data, false
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, false
	}
	return data, true
}

// Await polls a query until it settles or the context expires. Views rerender
// on their own cadence; this is the blocking equivalent for CLI consumers and
// tests.
func Await[T any](ctx context.Context, run func() Result[T]) (Result[T], error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		result := run()
		if !result.IsLoading {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
