package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"emofeed/feeds"
	"emofeed/models"

	"github.com/google/uuid"
)

// MutationState is the lifecycle of one create-post attempt.
type MutationState int

const (
	StateIdle MutationState = iota
	StatePending
	StateSuccess
	StateError
)

const (
	pendingMessage      = "Uploading your post!"
	successMessage      = "Posted!"
	genericErrorMessage = "Heh, try again"
)

// ErrMutationPending is returned when a post is submitted while the previous
// one has not settled. One outstanding create-post mutation per composer:
// further submissions are blocked until it settles.
var ErrMutationPending = errors.New("a post is already being submitted")

// PostComposer reconciles the create-post write with the query cache: it
// tracks the pending/settled state of the submission, drives the
// notification lifecycle, and invalidates the global feed on success so the
// next read picks up the new post without a reload.
type PostComposer struct {
	client   *Client
	notifier Notifier

	mu    sync.Mutex
	state MutationState
	input string
}

func NewPostComposer(client *Client, notifier Notifier) *PostComposer {
	return &PostComposer{
		client:   client,
		notifier: notifier,
	}
}

func (m *PostComposer) SetInput(input string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = input

	// Editing the draft after a settle returns the machine to idle; the
	// settled states only describe the submission they belong to.
	if m.state == StateSuccess || m.state == StateError {
		m.state = StateIdle
	}
}

func (m *PostComposer) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

func (m *PostComposer) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Submit sends the current input as a new post. Empty input is a no-op that
// never leaves the idle state. Each submission gets a fresh notification
// identity; the settled notification replaces the pending one under that
// identity.
func (m *PostComposer) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StatePending {
		m.mu.Unlock()
		return ErrMutationPending
	}
	if strings.TrimSpace(m.input) == "" {
		m.mu.Unlock()
		return nil
	}
	content := m.input
	m.state = StatePending
	m.mu.Unlock()

	noteID := uuid.NewString()
	m.notifier.Loading(noteID, pendingMessage)

	_, err := m.client.fetcher.CreatePost(ctx, content)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The input is cleared whichever way the write settles.
	m.input = ""

	if err != nil {
		m.state = StateError
		m.notifier.Error(noteID, errorMessage(err))
		return err
	}

	// Invalidation happens after the write is acknowledged and before the
	// success transition, so any re-render triggered by settling observes
	// a feed query that refetches fresh data.
	m.client.Invalidate(feeds.KeyAll())

	m.state = StateSuccess
	m.notifier.Success(noteID, successMessage)

	return nil
}

// errorMessage picks the message shown for a failed write: the first
// structured field error when the failure carries one, otherwise the generic
// retry message.
func errorMessage(err error) string {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		if msg := validation.FirstFieldError(); msg != "" {
			return msg
		}
	}
	return genericErrorMessage
}
