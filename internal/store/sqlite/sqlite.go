package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ezchat/ezchat-server/internal/store"
)

const (
	// DefaultTTL is the retention window counted from created_at.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxTextLen is the maximum message body length in characters.
	DefaultMaxTextLen = 2000
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	room       TEXT NOT NULL,
	user       TEXT NOT NULL,
	text       TEXT NOT NULL,
	is_pinned  BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
`

// Options controls validation and retention behavior.
type Options struct {
	TTL        time.Duration // zero means DefaultTTL
	MaxTextLen int           // zero means DefaultMaxTextLen
}

// MessageStore implements store.MessageStore for SQLite.
type MessageStore struct {
	db         *sql.DB
	ttl        time.Duration
	maxTextLen int
	now        func() time.Time
}

// New creates a new SQLite message store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string, opts Options) (*MessageStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &MessageStore{
		db:         db,
		ttl:        opts.TTL,
		maxTextLen: opts.MaxTextLen,
		now:        time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.maxTextLen <= 0 {
		s.maxTextLen = DefaultMaxTextLen
	}
	return s, nil
}

// Close closes the database connection.
func (s *MessageStore) Close() error {
	return s.db.Close()
}

// cutoff returns the oldest creation time still inside the retention window.
func (s *MessageStore) cutoff() time.Time {
	return s.now().UTC().Add(-s.ttl)
}

// Append validates and persists a new message.
func (s *MessageStore) Append(ctx context.Context, room, user, text string) (*store.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text: %w", store.ErrInvalidText)
	}
	if len([]rune(text)) > s.maxTextLen {
		return nil, fmt.Errorf("text exceeds %d characters: %w", s.maxTextLen, store.ErrInvalidText)
	}

	msg := &store.Message{
		ID:        uuid.NewString(),
		Room:      room,
		User:      user,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	query := `
		INSERT INTO messages (id, room, user, text, is_pinned, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, msg.ID, msg.Room, msg.User, msg.Text, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// History returns all non-expired messages for a room in ascending creation order.
func (s *MessageStore) History(ctx context.Context, room string) ([]*store.Message, error) {
	query := `
		SELECT id, room, user, text, is_pinned, created_at
		FROM messages
		WHERE room = ? AND created_at > ?
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, room, s.cutoff())
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.Room, &msg.User, &msg.Text, &msg.IsPinned, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return messages, nil
}

// SetPinned sets the pinned flag in a single UPDATE, so concurrent
// callers cannot lose each other's writes, then returns the record.
func (s *MessageStore) SetPinned(ctx context.Context, id string, pinned bool) (*store.Message, error) {
	query := `
		UPDATE messages
		SET is_pinned = ?
		WHERE id = ? AND created_at > ?
	`
	result, err := s.db.ExecContext(ctx, query, pinned, id, s.cutoff())
	if err != nil {
		return nil, fmt.Errorf("update pin: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.getByID(ctx, id)
}

func (s *MessageStore) getByID(ctx context.Context, id string) (*store.Message, error) {
	query := `
		SELECT id, room, user, text, is_pinned, created_at
		FROM messages
		WHERE id = ?
	`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.Room,
		&msg.User,
		&msg.Text,
		&msg.IsPinned,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	return &msg, nil
}

// PurgeExpired deletes messages older than the retention window.
func (s *MessageStore) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE created_at <= ?`, s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("purge expired: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
