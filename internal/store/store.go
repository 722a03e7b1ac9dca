package store

import (
	"context"
	"errors"
	"time"
)

// Message represents a persisted chat message. ID, Room, User, Text
// and CreatedAt are immutable after creation; only IsPinned changes.
type Message struct {
	ID        string
	Room      string
	User      string
	Text      string
	IsPinned  bool
	CreatedAt time.Time
}

var (
	// ErrNotFound is returned when no message exists with the given id
	// (or it has expired out of the retention window).
	ErrNotFound = errors.New("message not found")

	// ErrInvalidText is returned when a message body is empty,
	// whitespace-only, or exceeds the maximum length.
	ErrInvalidText = errors.New("invalid message text")
)

// MessageStore handles message persistence and retention.
type MessageStore interface {
	// Append validates and persists a new message, assigning its id
	// and server-side creation time, and returns the stored record.
	Append(ctx context.Context, room, user, text string) (*Message, error)

	// History returns all non-expired messages for a room in ascending
	// creation order. An empty room yields an empty slice.
	History(ctx context.Context, room string) ([]*Message, error)

	// SetPinned sets the pinned flag to the given value in a single
	// atomic write and returns the updated record. Idempotent:
	// applying the same value twice is not an error.
	SetPinned(ctx context.Context, id string, pinned bool) (*Message, error)

	// PurgeExpired physically deletes messages older than the
	// retention window and reports how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)

	// Close closes the underlying database connection.
	Close() error
}
