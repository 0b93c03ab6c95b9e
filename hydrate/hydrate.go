// Package hydrate bridges server-side page generation and the client query
// cache. At page-generation time it runs the page's queries directly against
// the feed service and packs the results into a serializable snapshot. The
// client seeds its cache from the snapshot so the first render needs no
// round-trip.
//
// Nothing is precomputed: generation is deferred until first request, so a
// prefetcher must tolerate previously-unseen parameter values at any time.
package hydrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"emofeed/cache"
	"emofeed/feeds"
	"emofeed/metrics"
	"emofeed/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Snapshot is the hydration payload: cache entries keyed by query identity.
// It serializes to { [queryKey]: { data, status: "success" } }.
type Snapshot map[string]cache.Entry

// GenerationError means a route parameter was malformed at page-generation
// time. It aborts generation of the page entirely; it is not a runtime
// user-facing condition.
type GenerationError struct {
	Param  string
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("page generation failed: param %q %s", e.Param, e.Reason)
}

type Prefetcher struct {
	feeds *feeds.Service
}

func NewPrefetcher(service *feeds.Service) *Prefetcher {
	return &Prefetcher{feeds: service}
}

// task fills one snapshot key. Missing targets are not errors: a task that
// finds nothing stores no entry, and the runtime renders a not-found state
// from the absent key.
type task func(ctx context.Context, snapshot Snapshot, mu *sync.Mutex)

// run executes the page's tasks concurrently and waits for all of them.
// Tasks are independent query identities; there is no ordering between them.
func run(ctx context.Context, tasks ...task) Snapshot {
	snapshot := Snapshot{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			t(ctx, snapshot, &mu)
		}(t)
	}

	wg.Wait()
	return snapshot
}

func store(snapshot Snapshot, mu *sync.Mutex, key string, data any) {
	mu.Lock()
	defer mu.Unlock()
	snapshot[key] = cache.Entry{Data: data, Status: cache.StatusSuccess}
}

// HomePage prefetches the global feed.
func (p *Prefetcher) HomePage(ctx context.Context) (Snapshot, error) {
	snapshot := run(ctx, func(ctx context.Context, snapshot Snapshot, mu *sync.Mutex) {
		feed, err := p.feeds.FeedAll(ctx)
		if err != nil {
			log.WithFields(log.Fields{"error": err}).Warn("Prefetch of global feed failed")
			return
		}
		store(snapshot, mu, feeds.KeyAll(), feed)
	})

	metrics.PagesPrefetched.WithLabelValues("home").Inc()
	return snapshot, nil
}

// ProfilePage prefetches the profile and author feed for a "@username" slug.
// A slug that is not a handle aborts generation; a handle that resolves to
// nobody still generates the page, with the profile key absent.
func (p *Prefetcher) ProfilePage(ctx context.Context, slug string) (Snapshot, error) {
	if !strings.HasPrefix(slug, "@") || len(slug) == 1 {
		return nil, &GenerationError{Param: "slug", Reason: "is not a @username handle"}
	}
	username := strings.TrimPrefix(slug, "@")

	author, err := p.feeds.Profile(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.PagesPrefetched.WithLabelValues("profile").Inc()
			return Snapshot{}, nil
		}
		log.WithFields(log.Fields{
			"username": username,
			"error":    err,
		}).Warn("Prefetch of profile failed")
		return Snapshot{}, nil
	}

	snapshot := run(ctx,
		func(ctx context.Context, snapshot Snapshot, mu *sync.Mutex) {
			store(snapshot, mu, feeds.KeyProfile(username), author)
		},
		func(ctx context.Context, snapshot Snapshot, mu *sync.Mutex) {
			feed, err := p.feeds.FeedByAuthor(ctx, author.ID)
			if err != nil {
				log.WithFields(log.Fields{
					"user":  author.ID,
					"error": err,
				}).Warn("Prefetch of author feed failed")
				return
			}
			store(snapshot, mu, feeds.KeyByAuthor(author.ID), feed)
		},
	)

	metrics.PagesPrefetched.WithLabelValues("profile").Inc()
	return snapshot, nil
}

// PostPage prefetches a single post. A malformed id aborts generation; an
// unknown id still generates the page, with the post key absent.
func (p *Prefetcher) PostPage(ctx context.Context, id string) (Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &GenerationError{Param: "id", Reason: "is not a post id"}
	}

	snapshot := run(ctx, func(ctx context.Context, snapshot Snapshot, mu *sync.Mutex) {
		post, err := p.feeds.FeedByID(ctx, id)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				log.WithFields(log.Fields{
					"id":    id,
					"error": err,
				}).Warn("Prefetch of post failed")
			}
			return
		}
		store(snapshot, mu, feeds.KeyByID(id), post)
	})

	metrics.PagesPrefetched.WithLabelValues("post").Inc()
	return snapshot, nil
}
