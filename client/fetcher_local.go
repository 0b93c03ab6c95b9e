package client

import (
	"context"

	"emofeed/db"
	"emofeed/feeds"
	"emofeed/models"
)

// LocalFetcher serves queries straight from the feed service in-process.
// Used when the client runtime runs inside the server binary and in tests.
type LocalFetcher struct {
	feeds  *feeds.Service
	writer *db.Writer

	// userID is the current-user capability for the write path.
	userID string
}

func NewLocalFetcher(service *feeds.Service, writer *db.Writer, userID string) *LocalFetcher {
	return &LocalFetcher{
		feeds:  service,
		writer: writer,
		userID: userID,
	}
}

func (f *LocalFetcher) FeedAll(ctx context.Context) ([]models.PostWithAuthor, error) {
	return f.feeds.FeedAll(ctx)
}

func (f *LocalFetcher) FeedByAuthor(ctx context.Context, userID string) ([]models.PostWithAuthor, error) {
	return f.feeds.FeedByAuthor(ctx, userID)
}

func (f *LocalFetcher) FeedByID(ctx context.Context, postID string) (models.PostWithAuthor, error) {
	return f.feeds.FeedByID(ctx, postID)
}

func (f *LocalFetcher) Profile(ctx context.Context, username string) (models.Author, error) {
	return f.feeds.Profile(ctx, username)
}

func (f *LocalFetcher) CreatePost(ctx context.Context, content string) (models.Post, error) {
	return f.writer.CreatePost(ctx, f.userID, content)
}
