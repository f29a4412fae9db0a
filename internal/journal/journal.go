// Package journal keeps a local history of the remote operations performed
// on posts.
package journal

import (
	"context"
	"time"
)

// Status is the outcome of an operation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Entry is one recorded operation.
type Entry struct {
	ID          int64
	RunID       string
	Command     string
	PostID      string
	Path        string
	Title       string
	URL         string
	Fingerprint string
	Status      Status
	Error       string
	Timestamp   time.Time
}

// Filter narrows List results. A zero Limit means no limit.
type Filter struct {
	PostID string
	Limit  int
}

// Store persists operation entries.
type Store interface {
	// Append records an entry. A zero Timestamp is set to the current time.
	Append(ctx context.Context, e Entry) error

	// LastForPost returns the most recent successful entry for postID, or
	// ErrNoEntry when there is none.
	LastForPost(ctx context.Context, postID string) (*Entry, error)

	// List returns entries newest first.
	List(ctx context.Context, f Filter) ([]Entry, error)

	// Close closes the store and releases resources.
	Close() error
}
