package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// One canonical type name per action; no aliases.
const (
	InboundTypeJoinServer  = "join_server"
	InboundTypeSendMessage = "send_message"
	InboundTypePinMessage  = "pin_message"

	OutboundTypeHistory     = "load_message_history"
	OutboundTypeUsersUpdate = "users_update"
	OutboundTypeMessage     = "receive_message"
	OutboundTypePinUpdate   = "pin_update"
	OutboundTypeError       = "error"
)

// JoinServerData asks to join the room selected by server and optional group.
type JoinServerData struct {
	Server   string `json:"server"`
	Group    string `json:"group,omitempty"`
	Username string `json:"username"`
}

// SendMessageData is a chat message from the client. Timestamp is
// accepted for wire compatibility but creation time is server-assigned.
type SendMessageData struct {
	Server    string `json:"server"`
	Group     string `json:"group,omitempty"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// PinMessageData requests a pin state change on a message.
type PinMessageData struct {
	MessageID string `json:"messageId"`
	RoomKey   string `json:"roomKey"`
	IsPinned  bool   `json:"isPinned"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessagePayload is the canonical message shape on the wire.
type MessagePayload struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	User      string `json:"user"`
	Text      string `json:"text"`
	IsPinned  bool   `json:"isPinned"`
	CreatedAt string `json:"createdAt"`
}

// HistoryPayload delivers a room's messages in ascending creation order.
type HistoryPayload struct {
	Room     string           `json:"room"`
	Messages []MessagePayload `json:"messages"`
}

// UsersUpdatePayload is the full replacement presence list for a room.
type UsersUpdatePayload struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// PinUpdatePayload notifies a room that a message's pin state changed.
type PinUpdatePayload struct {
	MessageID string `json:"messageId"`
	RoomKey   string `json:"roomKey"`
	IsPinned  bool   `json:"isPinned"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// RoomKey combines the server selector with an optional group into the
// composite room identifier.
func RoomKey(server, group string) string {
	if group == "" {
		return server
	}
	return server + "-" + group
}
