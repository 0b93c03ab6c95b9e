package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"emofeed/hydrate"
	"emofeed/models"

	"github.com/cenkalti/backoff/v4"
)

// HTTPFetcher serves queries over the feed server's HTTP API. Reads are
// retried with exponential backoff on transient failures; the write is sent
// exactly once.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client

	// userID is the current-user capability, forwarded as the caller
	// identity header on writes.
	userID string
}

const userHeader = "X-User-ID"

func NewHTTPFetcher(baseURL string, userID string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  http.DefaultClient,
		userID:  userID,
	}
}

func (f *HTTPFetcher) FeedAll(ctx context.Context) ([]models.PostWithAuthor, error) {
	return getJSON[[]models.PostWithAuthor](ctx, f, "/api/posts")
}

func (f *HTTPFetcher) FeedByAuthor(ctx context.Context, userID string) ([]models.PostWithAuthor, error) {
	return getJSON[[]models.PostWithAuthor](ctx, f, "/api/authors/"+url.PathEscape(userID)+"/posts")
}

func (f *HTTPFetcher) FeedByID(ctx context.Context, postID string) (models.PostWithAuthor, error) {
	return getJSON[models.PostWithAuthor](ctx, f, "/api/posts/"+url.PathEscape(postID))
}

func (f *HTTPFetcher) Profile(ctx context.Context, username string) (models.Author, error) {
	return getJSON[models.Author](ctx, f, "/api/profile/"+url.PathEscape(username))
}

// Page fetches a page hydration snapshot, for seeding the cache before the
// first render.
func (f *HTTPFetcher) Page(ctx context.Context, path string) (hydrate.Snapshot, error) {
	return getJSON[hydrate.Snapshot](ctx, f, path)
}

func (f *HTTPFetcher) CreatePost(ctx context.Context, content string) (models.Post, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return models.Post{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/api/posts", bytes.NewReader(body))
	if err != nil {
		return models.Post{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userHeader, f.userID)

	resp, err := f.client.Do(req)
	if err != nil {
		return models.Post{}, &models.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return models.Post{}, decodeError(resp)
	}

	var created models.PostWithAuthor
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return models.Post{}, &models.TransportError{Err: err}
	}

	return created.Post, nil
}

// getJSON fetches and decodes one API resource, retrying transient failures.
func getJSON[T any](ctx context.Context, f *HTTPFetcher, path string) (T, error) {
	var result T

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return &models.TransportError{Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return &models.TransportError{Err: fmt.Errorf("server returned %d", resp.StatusCode)}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(decodeError(resp))
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return &models.TransportError{Err: err}
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return result, err
	}

	return result, nil
}

// apiError is the error body the server sends for settled failures.
type apiError struct {
	Message     string              `json:"message"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload apiError
	_ = json.Unmarshal(body, &payload)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusBadRequest:
		if len(payload.FieldErrors) > 0 {
			return &models.ValidationError{FieldErrors: payload.FieldErrors}
		}
		return &models.ValidationError{}
	default:
		return &models.TransportError{Err: fmt.Errorf("server returned %d: %s", resp.StatusCode, payload.Message)}
	}
}
