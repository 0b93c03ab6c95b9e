package feeds_test

import (
	"context"
	"testing"
	"time"

	"emofeed/feeds"
	"emofeed/models"
	"emofeed/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPosts struct {
	all    []models.Post
	byUser map[string][]models.Post
	byID   map[string]models.Post
}

func (s *stubPosts) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return s.all, nil
}

func (s *stubPosts) GetPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return s.byUser[authorID], nil
}

func (s *stubPosts) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	post, ok := s.byID[id]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	return post, nil
}

type stubDirectory struct {
	users map[string]models.Author
}

func (d *stubDirectory) GetUser(ctx context.Context, id string) (models.Author, error) {
	if author, ok := d.users[id]; ok {
		return author, nil
	}
	return models.Author{}, models.ErrNotFound
}

func (d *stubDirectory) GetUsers(ctx context.Context, ids []string) ([]models.Author, error) {
	authors := []models.Author{}
	for _, id := range ids {
		if author, ok := d.users[id]; ok {
			authors = append(authors, author)
		}
	}
	return authors, nil
}

func (d *stubDirectory) GetUserByUsername(ctx context.Context, username string) (models.Author, error) {
	for _, author := range d.users {
		if author.Username == username {
			return author, nil
		}
	}
	return models.Author{}, models.ErrNotFound
}

func post(id, author string, age time.Duration) models.Post {
	return models.Post{
		ID:        id,
		AuthorID:  author,
		Content:   "🎉",
		CreatedAt: time.Now().Add(-age).UTC(),
	}
}

func newService(posts *stubPosts) *feeds.Service {
	dir := &stubDirectory{
		users: map[string]models.Author{
			"u1": {ID: "u1", Username: "alice"},
			"u2": {ID: "u2", Username: "bob"},
		},
	}
	return feeds.NewService(posts, users.NewResolver(dir, "/static/deleted-user.png"))
}

func TestFeedAll(t *testing.T) {
	newest := post("p1", "u1", time.Minute)
	middle := post("p2", "gone", 2*time.Minute)
	oldest := post("p3", "u2", 3*time.Minute)

	service := newService(&stubPosts{all: []models.Post{newest, middle, oldest}})

	feed, err := service.FeedAll(context.Background())
	require.NoError(t, err)

	t.Run("every post yields exactly one joined entry", func(t *testing.T) {
		require.Len(t, feed, 3)
		assert.Equal(t, newest, feed[0].Post)
		assert.Equal(t, middle, feed[1].Post)
		assert.Equal(t, oldest, feed[2].Post)
	})

	t.Run("input ordering is preserved unchanged", func(t *testing.T) {
		assert.Equal(t, []string{"p1", "p2", "p3"}, []string{feed[0].Post.ID, feed[1].Post.ID, feed[2].Post.ID})
	})

	t.Run("unresolvable authors become the placeholder", func(t *testing.T) {
		assert.Equal(t, models.DeletedUsername, feed[1].Author.Username)
		assert.Equal(t, "/static/deleted-user.png", feed[1].Author.ProfileImageURL)
	})

	t.Run("resolvable authors keep their profile", func(t *testing.T) {
		assert.Equal(t, "alice", feed[0].Author.Username)
		assert.Equal(t, "bob", feed[2].Author.Username)
	})
}

func TestFeedByAuthor(t *testing.T) {
	p1 := post("p1", "u1", time.Minute)
	p2 := post("p2", "u1", 2*time.Minute)

	service := newService(&stubPosts{byUser: map[string][]models.Post{
		"u1": {p1, p2},
	}})

	t.Run("returns the author's posts", func(t *testing.T) {
		feed, err := service.FeedByAuthor(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, "alice", feed[0].Author.Username)
	})

	t.Run("an author with no posts yields an empty feed", func(t *testing.T) {
		feed, err := service.FeedByAuthor(context.Background(), "u2")
		require.NoError(t, err)
		assert.Empty(t, feed)
	})
}

func TestFeedByID(t *testing.T) {
	orphan := post("p9", "gone", time.Minute)
	service := newService(&stubPosts{byID: map[string]models.Post{"p9": orphan}})

	t.Run("joins a single post", func(t *testing.T) {
		joined, err := service.FeedByID(context.Background(), "p9")
		require.NoError(t, err)
		assert.Equal(t, orphan, joined.Post)
		assert.Equal(t, models.DeletedUsername, joined.Author.Username)
	})

	t.Run("not found passes through", func(t *testing.T) {
		_, err := service.FeedByID(context.Background(), "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "global feed",
			key:      feeds.KeyAll(),
			expected: "posts.getAll",
		},
		{
			name:     "by author",
			key:      feeds.KeyByAuthor("u1"),
			expected: "posts.getByAuthor?user=u1",
		},
		{
			name:     "by id escapes parameters",
			key:      feeds.KeyByID("a b"),
			expected: "posts.getById?id=a+b",
		},
		{
			name:     "profile",
			key:      feeds.KeyProfile("alice"),
			expected: "profile.byUsername?username=alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.key)
		})
	}
}
