package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ezchat/ezchat-server/internal/store"
)

// Hub coordinates rooms, presence and messages for all connected
// clients. One Run loop drains registration and command channels, so
// membership mutations and the announcements that follow them are
// observed in the same order by every member of a room, and message
// broadcast order matches the order in which appends complete.
type Hub struct {
	registry *Registry
	store    store.MessageStore
	log      *zerolog.Logger

	register chan *Client
	commands chan clientCommand
}

// clientCommand carries one client action into the hub loop.
// A nil cmd marks the client's disconnect, queued after its last
// command so an in-flight send still completes and broadcasts.
type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub backed by the given message store.
func NewHub(st store.MessageStore, logger *zerolog.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		store:    st,
		log:      logger,
		register: make(chan *Client, 8),
		commands: make(chan clientCommand, 64),
	}
}

// RegisterClient makes the hub aware of a new connection and starts
// consuming its commands.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient signals that the client disconnected. The caller
// must not write to c.Commands afterwards; remaining buffered commands
// are still processed before the client leaves its room.
func (h *Hub) UnregisterClient(c *Client) {
	close(c.Commands)
}

// Run processes hub traffic until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			go h.pump(ctx, c)
		case cc := <-h.commands:
			if cc.cmd == nil {
				h.handleDisconnect(cc.client)
				continue
			}
			h.handleCommand(ctx, cc.client, cc.cmd)
		}
	}
}

// pump forwards one client's commands into the hub loop, preserving
// per-connection order, and queues the disconnect marker once the
// client's Commands channel is closed.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for cmd := range c.Commands {
		select {
		case h.commands <- clientCommand{client: c, cmd: cmd}:
		case <-ctx.Done():
			return
		}
	}
	select {
	case h.commands <- clientCommand{client: c}:
	case <-ctx.Done():
	}
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(ctx, c, cmd)
	case CommandSendMessage:
		h.handleSend(ctx, c, cmd)
	case CommandPinMessage:
		h.handlePin(ctx, c, cmd)
	default:
		h.sendError(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, cmd *Command) {
	if cmd.User == "" {
		h.sendError(c, coreError(ErrCodeValidation, "username is required"))
		return
	}
	if cmd.Room == "" {
		h.sendError(c, coreError(ErrCodeValidation, "room is required"))
		return
	}

	c.Name = cmd.User
	prevKey, switched := h.registry.Join(c, cmd.Room)
	if switched {
		h.announcePresence(prevKey)
	}

	messages, err := h.store.History(ctx, cmd.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("load history")
		h.sendError(c, coreError(ErrCodePersistence, "failed to load message history"))
	} else {
		h.sendEvent(c, &Event{
			Kind:     EventHistory,
			Room:     cmd.Room,
			Messages: fromStoreMessages(messages),
		})
	}

	h.announcePresence(cmd.Room)

	h.log.Debug().Str("client_id", c.ID).Str("user", c.Name).Str("room", cmd.Room).Msg("client joined room")
}

func (h *Hub) handleSend(ctx context.Context, c *Client, cmd *Command) {
	room, ok := h.registry.RoomOf(c)
	if !ok {
		h.sendError(c, coreError(ErrCodeNotInRoom, "join a room before sending"))
		return
	}
	if cmd.Room != "" && cmd.Room != room {
		h.sendError(c, coreError(ErrCodeValidation, "message room does not match current room"))
		return
	}

	msg, err := h.store.Append(ctx, room, c.Name, cmd.Text)
	if err != nil {
		if errors.Is(err, store.ErrInvalidText) {
			h.sendError(c, coreError(ErrCodeValidation, "message text must be 1-2000 characters"))
			return
		}
		h.log.Error().Err(err).Str("room", room).Msg("append message")
		h.sendError(c, coreError(ErrCodePersistence, "failed to send message"))
		return
	}

	// The stored record is broadcast to everyone, sender included:
	// the server-assigned id is the single source of message identity.
	h.registry.Broadcast(room, &Event{
		Kind:    EventRoomMessage,
		Room:    room,
		Message: fromStoreMessage(msg),
	})
}

func (h *Hub) handlePin(ctx context.Context, c *Client, cmd *Command) {
	if _, ok := h.registry.RoomOf(c); !ok {
		h.sendError(c, coreError(ErrCodeNotInRoom, "join a room before pinning"))
		return
	}

	if _, err := h.PinMessage(ctx, cmd.MessageID, cmd.Pinned); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(c, coreError(ErrCodeNotFound, "message not found"))
			return
		}
		h.log.Error().Err(err).Str("message_id", cmd.MessageID).Msg("pin message")
		h.sendError(c, coreError(ErrCodePersistence, "failed to update pin status"))
	}
}

// PinMessage applies a pin state atomically at the store layer and
// broadcasts the result to the message's room. It is shared by the
// real-time channel and the REST endpoint so both follow the same
// store contract.
func (h *Hub) PinMessage(ctx context.Context, messageID string, pinned bool) (*Message, error) {
	stored, err := h.store.SetPinned(ctx, messageID, pinned)
	if err != nil {
		return nil, err
	}

	msg := fromStoreMessage(stored)
	h.registry.Broadcast(msg.Room, &Event{
		Kind:    EventPinUpdate,
		Room:    msg.Room,
		Message: msg,
	})
	return msg, nil
}

func (h *Hub) handleDisconnect(c *Client) {
	key, ok := h.registry.Leave(c)
	if !ok {
		return
	}
	h.announcePresence(key)
	h.log.Debug().Str("client_id", c.ID).Str("room", key).Msg("client left room")
}

func (h *Hub) announcePresence(key string) {
	h.registry.Broadcast(key, &Event{
		Kind:  EventPresence,
		Room:  key,
		Users: h.registry.Presence(key),
	})
}

func (h *Hub) sendEvent(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

func (h *Hub) sendError(c *Client, cerr *CoreError) {
	h.sendEvent(c, &Event{Kind: EventError, Error: cerr})
}

func fromStoreMessage(m *store.Message) *Message {
	return &Message{
		ID:        m.ID,
		Room:      m.Room,
		From:      m.User,
		Text:      m.Text,
		Pinned:    m.IsPinned,
		CreatedAt: m.CreatedAt,
	}
}

func fromStoreMessages(ms []*store.Message) []*Message {
	out := make([]*Message, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromStoreMessage(m))
	}
	return out
}
