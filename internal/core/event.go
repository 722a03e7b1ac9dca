package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventHistory delivers message history to a client upon joining a room.
	EventHistory EventKind = iota
	// EventPresence delivers the full identity list of a room to its members.
	EventPresence
	// EventRoomMessage notifies room members about a new chat message.
	EventRoomMessage
	// EventPinUpdate notifies room members that a message's pinned flag changed.
	EventPinUpdate
	// EventError notifies a single client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Users    []string   // for EventPresence: sorted, distinct identities
	Message  *Message   // for EventRoomMessage and EventPinUpdate
	Messages []*Message // for EventHistory, ascending by creation time
	Error    *CoreError
}
