// Package feeds joins posts with their authors into the projection rendered
// everywhere. Ordering is a property of the post source; the join preserves
// it and never drops a post, substituting a deleted-user placeholder when an
// author id no longer resolves.
package feeds

import (
	"context"

	"emofeed/models"
	"emofeed/users"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// PostSource is the read side of the post store.
type PostSource interface {
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	GetPostByID(ctx context.Context, id string) (models.Post, error)
}

type Service struct {
	posts   PostSource
	authors *users.Resolver
}

func NewService(posts PostSource, authors *users.Resolver) *Service {
	return &Service{
		posts:   posts,
		authors: authors,
	}
}

// join resolves the authors of a batch of posts in one directory read and
// zips them by position. Input ordering is preserved unchanged.
func (s *Service) join(ctx context.Context, posts []models.Post) []models.PostWithAuthor {
	authorIDs := lo.Map(posts, func(post models.Post, _ int) string {
		return post.AuthorID
	})
	authors := s.authors.ResolveAll(ctx, authorIDs)

	return lo.Map(posts, func(post models.Post, _ int) models.PostWithAuthor {
		return models.PostWithAuthor{
			Post:   post,
			Author: authors[post.AuthorID],
		}
	})
}

// FeedAll returns the global feed, newest first.
func (s *Service) FeedAll(ctx context.Context) ([]models.PostWithAuthor, error) {
	posts, err := s.posts.GetAllPosts(ctx)
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Error("Error getting feed")
		return nil, err
	}

	return s.join(ctx, posts), nil
}

// FeedByAuthor returns one author's posts, newest first. An author with no
// posts yields an empty feed.
func (s *Service) FeedByAuthor(ctx context.Context, userID string) ([]models.PostWithAuthor, error) {
	posts, err := s.posts.GetPostsByAuthor(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"user":  userID,
			"error": err,
		}).Error("Error getting author feed")
		return nil, err
	}

	return s.join(ctx, posts), nil
}

// FeedByID returns a single joined post. models.ErrNotFound passes through
// for the caller to render a no-post state.
func (s *Service) FeedByID(ctx context.Context, postID string) (models.PostWithAuthor, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return models.PostWithAuthor{}, err
	}

	joined := s.join(ctx, []models.Post{post})
	return joined[0], nil
}

// Profile looks up an author by display handle. models.ErrNotFound passes
// through for the caller to render a not-found state.
func (s *Service) Profile(ctx context.Context, username string) (models.Author, error) {
	return s.authors.ByUsername(ctx, username)
}
