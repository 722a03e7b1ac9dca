package core

import "time"

// Message is the domain model for a chat message.
// Only Pinned may change after creation.
type Message struct {
	ID        string
	Room      string
	From      string
	Text      string
	Pinned    bool
	CreatedAt time.Time
}
