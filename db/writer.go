package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"emofeed/models"

	"github.com/google/uuid"
	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// MaxContentLength is the upper bound on post content, in runes. Content
// policy beyond length (what counts as an acceptable emoji post) belongs to
// the caller.
const MaxContentLength = 280

// Writer owns the single writable connection to the database.
type Writer struct {
	db *sql.DB
}

func NewWriter(database string) *Writer {
	db, err := connection(database)
	if err != nil {
		panic("failed to connect database")
	}
	return &Writer{db: db}
}

func (writer *Writer) Close() error {
	return writer.db.Close()
}

// validateContent applies the write-time rules for post content. Violations
// come back as field errors on "content" so the UI can show the first one.
func validateContent(content string) *models.ValidationError {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content", "Content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return models.NewValidationError("content", "Content too long")
	}
	return nil
}

// CreatePost validates and stores a new post, returning the stored post with
// its assigned id and creation time.
func (writer *Writer) CreatePost(ctx context.Context, authorID string, content string) (models.Post, error) {
	if err := validateContent(content); err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Content:  content,
		// Stored at millisecond precision; keep the returned post
		// identical to what a later read will see.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	log.WithFields(log.Fields{
		"id":     post.ID,
		"author": post.AuthorID,
	}).Info("Creating post")

	insertPost := sqlbuilder.NewInsertBuilder()
	query, args := insertPost.InsertInto("posts").
		Cols("id", "author_id", "content", "created_at").
		Values(post.ID, post.AuthorID, post.Content, post.CreatedAt.UnixMilli()).
		Build()

	if _, err := writer.db.ExecContext(ctx, query, args...); err != nil {
		return models.Post{}, fmt.Errorf("insert error: %w", err)
	}

	return post, nil
}

// CreateUser stores a new user directory entry.
func (writer *Writer) CreateUser(ctx context.Context, username string, profileImageURL string) (models.Author, error) {
	if strings.TrimSpace(username) == "" {
		return models.Author{}, models.NewValidationError("username", "Username cannot be empty")
	}

	author := models.Author{
		ID:              uuid.NewString(),
		Username:        username,
		ProfileImageURL: profileImageURL,
	}

	insertUser := sqlbuilder.NewInsertBuilder()
	query, args := insertUser.InsertInto("users").
		Cols("id", "username", "profile_image_url", "created_at").
		Values(author.ID, author.Username, author.ProfileImageURL, time.Now().UnixMilli()).
		Build()

	if _, err := writer.db.ExecContext(ctx, query, args...); err != nil {
		return models.Author{}, fmt.Errorf("insert error: %w", err)
	}

	return author, nil
}

// DeleteUser removes a user from the directory. Their posts are kept and
// resolve to the deleted-user placeholder from then on.
func (writer *Writer) DeleteUser(ctx context.Context, id string) error {
	log.WithFields(log.Fields{"id": id}).Info("Deleting user")

	_, err := writer.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// CountPosts returns the total number of stored posts.
func (writer *Writer) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	if err := writer.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("query error: %w", err)
	}
	return count, nil
}
