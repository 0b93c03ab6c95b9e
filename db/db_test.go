package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"emofeed/db"
	"emofeed/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "feed.db")
	require.NoError(t, db.Migrate(path))
	return path
}

// insertPost writes a post row with an explicit creation time, bypassing the
// writer, so ordering tests control the underlying record order.
func insertPost(t *testing.T, path string, id, authorID, content string, createdAt time.Time) {
	t.Helper()

	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(
		"INSERT INTO posts (id, author_id, content, created_at) VALUES (?, ?, ?, ?)",
		id, authorID, content, createdAt.UnixMilli(),
	)
	require.NoError(t, err)
}

func TestGetAllPosts(t *testing.T) {
	path := setupDatabase(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	// Inserted out of creation order on purpose.
	insertPost(t, path, "p1", "u1", "🌞", now.Add(-3*time.Minute))
	insertPost(t, path, "p2", "u2", "🌚", now.Add(-1*time.Minute))
	insertPost(t, path, "p3", "u1", "⭐", now.Add(-2*time.Minute))

	t.Run("sorted newest first regardless of insert order", func(t *testing.T) {
		reader := db.NewReader(path, 100)
		defer reader.Close()

		posts, err := reader.GetAllPosts(context.Background())
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, []string{"p2", "p3", "p1"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	})

	t.Run("capped at the configured window", func(t *testing.T) {
		reader := db.NewReader(path, 2)
		defer reader.Close()

		posts, err := reader.GetAllPosts(context.Background())
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "p2", posts[0].ID, "the window keeps the most recent posts")
	})
}

func TestGetPostsByAuthor(t *testing.T) {
	path := setupDatabase(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	insertPost(t, path, "p1", "u1", "🌞", now.Add(-3*time.Minute))
	insertPost(t, path, "p2", "u2", "🌚", now.Add(-1*time.Minute))
	insertPost(t, path, "p3", "u1", "⭐", now.Add(-2*time.Minute))

	reader := db.NewReader(path, 100)
	defer reader.Close()

	t.Run("only the author's posts, newest first", func(t *testing.T) {
		posts, err := reader.GetPostsByAuthor(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, []string{"p3", "p1"}, []string{posts[0].ID, posts[1].ID})
	})

	t.Run("an author without posts yields an empty slice", func(t *testing.T) {
		posts, err := reader.GetPostsByAuthor(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestGetPostByID(t *testing.T) {
	path := setupDatabase(t)
	createdAt := time.Now().UTC().Truncate(time.Millisecond)
	insertPost(t, path, "p1", "u1", "🌞", createdAt)

	reader := db.NewReader(path, 100)
	defer reader.Close()

	t.Run("returns the post", func(t *testing.T) {
		post, err := reader.GetPostByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "🌞", post.Content)
		assert.Equal(t, createdAt, post.CreatedAt)
	})

	t.Run("missing posts are a first-class not-found", func(t *testing.T) {
		_, err := reader.GetPostByID(context.Background(), "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestCreatePost(t *testing.T) {
	path := setupDatabase(t)
	writer := db.NewWriter(path)
	defer writer.Close()

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name     string
			content  string
			expected string
		}{
			{name: "empty content", content: "", expected: "Content cannot be empty"},
			{name: "whitespace content", content: "  \n ", expected: "Content cannot be empty"},
			{name: "content too long", content: strings.Repeat("🎉", db.MaxContentLength+1), expected: "Content too long"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := writer.CreatePost(context.Background(), "u1", tt.content)

				var validation *models.ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, tt.expected, validation.FirstFieldError())
			})
		}
	})

	t.Run("content at the limit is accepted", func(t *testing.T) {
		_, err := writer.CreatePost(context.Background(), "u1", strings.Repeat("🎉", db.MaxContentLength))
		assert.NoError(t, err)
	})

	t.Run("a created post is readable", func(t *testing.T) {
		created, err := writer.CreatePost(context.Background(), "u1", "☕️💻")
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		reader := db.NewReader(path, 100)
		defer reader.Close()

		post, err := reader.GetPostByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, post)
	})
}

func TestUserDirectory(t *testing.T) {
	path := setupDatabase(t)
	writer := db.NewWriter(path)
	defer writer.Close()

	alice, err := writer.CreateUser(context.Background(), "alice", "https://example.com/alice.png")
	require.NoError(t, err)
	bob, err := writer.CreateUser(context.Background(), "bob", "https://example.com/bob.png")
	require.NoError(t, err)

	reader := db.NewReader(path, 100)
	defer reader.Close()

	t.Run("lookup by id", func(t *testing.T) {
		author, err := reader.GetUser(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice, author)
	})

	t.Run("lookup by username", func(t *testing.T) {
		author, err := reader.GetUserByUsername(context.Background(), "bob")
		require.NoError(t, err)
		assert.Equal(t, bob, author)
	})

	t.Run("unknown users are not found", func(t *testing.T) {
		_, err := reader.GetUser(context.Background(), "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = reader.GetUserByUsername(context.Background(), "nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("batch lookup skips unresolvable ids", func(t *testing.T) {
		authors, err := reader.GetUsers(context.Background(), []string{alice.ID, "missing", bob.ID})
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.Author{alice, bob}, authors)
	})

	t.Run("deleted users disappear from the directory", func(t *testing.T) {
		require.NoError(t, writer.DeleteUser(context.Background(), bob.ID))

		_, err := reader.GetUser(context.Background(), bob.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestTidy(t *testing.T) {
	path := setupDatabase(t)
	now := time.Now().UTC()

	insertPost(t, path, "old", "u1", "🦴", now.Add(-db.RetentionPeriod-24*time.Hour))
	insertPost(t, path, "fresh", "u1", "🌱", now.Add(-time.Minute))

	deleted, err := db.Tidy(context.Background(), path)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	reader := db.NewReader(path, 100)
	defer reader.Close()

	posts, err := reader.GetAllPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "fresh", posts[0].ID)
}
