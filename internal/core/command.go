package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom places the client into a room, leaving its current one.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage persists and delivers a chat message to room members.
	CommandSendMessage
	// CommandPinMessage sets the pinned flag on an existing message.
	CommandPinMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind      CommandKind
	Room      string
	User      string // identity for CommandJoinRoom
	Text      string // body for CommandSendMessage
	MessageID string // target for CommandPinMessage
	Pinned    bool   // target flag for CommandPinMessage
}
