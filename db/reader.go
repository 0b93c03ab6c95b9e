package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"emofeed/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

// Reader serves all read queries over posts and the user directory.
type Reader struct {
	db *sql.DB

	// window caps every feed query. There is no pagination cursor; a feed
	// read is always the most recent window posts.
	window int
}

func NewReader(database string, window int) *Reader {
	// Open in read-only mode with optimized settings
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?mode=ro&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", database))
	if err != nil {
		panic("failed to connect database")
	}

	// Set connection pool settings for reader
	db.SetMaxOpenConns(4)            // Allow multiple concurrent readers
	db.SetMaxIdleConns(2)            // Keep some connections ready
	db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
	db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	if _, err := db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -32000; -- 32MB cache
		PRAGMA temp_store = MEMORY;
	`); err != nil {
		panic(fmt.Sprintf("failed to set pragmas: %v", err))
	}

	return &Reader{
		db:     db,
		window: window,
	}
}

func (reader *Reader) Close() error {
	return reader.db.Close()
}

func postColumns(sb *sqlbuilder.SelectBuilder) *sqlbuilder.SelectBuilder {
	return sb.Select("id", "author_id", "content", "created_at")
}

func scanPost(rows interface{ Scan(...any) error }) (models.Post, error) {
	var post models.Post
	var createdAt int64
	if err := rows.Scan(&post.ID, &post.AuthorID, &post.Content, &createdAt); err != nil {
		return models.Post{}, err
	}
	post.CreatedAt = time.UnixMilli(createdAt).UTC()
	return post, nil
}

func (reader *Reader) queryPosts(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]models.Post, error) {
	sql, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := reader.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, &models.TransportError{Err: fmt.Errorf("query error: %w", err)}
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// GetAllPosts returns the global feed window, newest first.
func (reader *Reader) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	sb := postColumns(sqlbuilder.NewSelectBuilder()).From("posts")
	sb.OrderBy("created_at").Desc()
	sb.Limit(reader.window)

	return reader.queryPosts(ctx, sb)
}

// GetPostsByAuthor returns the author's posts, newest first. An author with
// no posts yields an empty slice, not an error.
func (reader *Reader) GetPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	sb := postColumns(sqlbuilder.NewSelectBuilder()).From("posts")
	sb.Where(sb.Equal("author_id", authorID))
	sb.OrderBy("created_at").Desc()
	sb.Limit(reader.window)

	return reader.queryPosts(ctx, sb)
}

// GetPostByID returns a single post or models.ErrNotFound.
func (reader *Reader) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	sb := postColumns(sqlbuilder.NewSelectBuilder()).From("posts")
	sb.Where(sb.Equal("id", id))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	post, err := scanPost(reader.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return models.Post{}, models.ErrNotFound
	}
	if err != nil {
		return models.Post{}, &models.TransportError{Err: fmt.Errorf("query error: %w", err)}
	}

	return post, nil
}

// GetUser returns the profile projection for a user id or models.ErrNotFound.
func (reader *Reader) GetUser(ctx context.Context, id string) (models.Author, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "username", "profile_image_url").From("users")
	sb.Where(sb.Equal("id", id))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	var author models.Author
	err := reader.db.QueryRowContext(ctx, query, args...).Scan(&author.ID, &author.Username, &author.ProfileImageURL)
	if err == sql.ErrNoRows {
		return models.Author{}, models.ErrNotFound
	}
	if err != nil {
		return models.Author{}, &models.TransportError{Err: fmt.Errorf("query error: %w", err)}
	}

	return author, nil
}

// GetUsers returns the profile projections for a set of user ids. Ids that do
// not resolve are simply absent from the result; callers substitute the
// deleted-user placeholder.
func (reader *Reader) GetUsers(ctx context.Context, ids []string) ([]models.Author, error) {
	if len(ids) == 0 {
		return []models.Author{}, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "username", "profile_image_url").From("users")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	sb.Where(sb.In("id", args...))

	query, queryArgs := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := reader.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, &models.TransportError{Err: fmt.Errorf("query error: %w", err)}
	}
	defer rows.Close()

	authors := []models.Author{}
	for rows.Next() {
		var author models.Author
		if err := rows.Scan(&author.ID, &author.Username, &author.ProfileImageURL); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		authors = append(authors, author)
	}

	return authors, rows.Err()
}

// GetUserByUsername returns the profile projection for a display handle or
// models.ErrNotFound.
func (reader *Reader) GetUserByUsername(ctx context.Context, username string) (models.Author, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "username", "profile_image_url").From("users")
	sb.Where(sb.Equal("username", username))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	var author models.Author
	err := reader.db.QueryRowContext(ctx, query, args...).Scan(&author.ID, &author.Username, &author.ProfileImageURL)
	if err == sql.ErrNoRows {
		return models.Author{}, models.ErrNotFound
	}
	if err != nil {
		return models.Author{}, &models.TransportError{Err: fmt.Errorf("query error: %w", err)}
	}

	return author, nil
}
