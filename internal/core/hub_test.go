package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startHub(t *testing.T, st *memStore) (*Hub, context.CancelFunc) {
	t.Helper()

	logger := zerolog.Nop()
	hub := NewHub(st, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go hub.Run(ctx)
	return hub, cancel
}

func joinRoom(hub *Hub, c *Client, room, user string) {
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room, User: user}
}

func TestHubJoinDeliversHistoryAndPresence(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	joinRoom(hub, alice, "US", "alice")

	history := mustEvent(t, alice.Events, EventHistory)
	if history.Room != "US" || len(history.Messages) != 0 {
		t.Fatalf("unexpected history event: %+v", history)
	}

	presence := mustEvent(t, alice.Events, EventPresence)
	if presence.Room != "US" || !equalUsers(presence.Users, []string{"alice"}) {
		t.Fatalf("unexpected presence event: %+v", presence)
	}

	bob := NewClient("b")
	joinRoom(hub, bob, "US", "bob")

	// Both members observe the updated full presence list.
	for _, c := range []*Client{alice, bob} {
		presence := mustEvent(t, c.Events, EventPresence)
		if !equalUsers(presence.Users, []string{"alice", "bob"}) {
			t.Fatalf("unexpected presence for %s: %v", c.ID, presence.Users)
		}
	}
}

func TestHubBroadcastIncludesSender(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	bob := NewClient("b")
	joinRoom(hub, alice, "US", "alice")
	joinRoom(hub, bob, "US", "bob")

	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "US", Text: "hi"}

	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventRoomMessage)
		msg := ev.Message
		if msg.From != "alice" || msg.Text != "hi" || msg.Room != "US" {
			t.Fatalf("unexpected message for %s: %+v", c.ID, msg)
		}
		if msg.ID == "" || msg.CreatedAt.IsZero() {
			t.Fatalf("message missing server-assigned fields: %+v", msg)
		}
		if msg.Pinned {
			t.Fatalf("new message already pinned: %+v", msg)
		}
	}
}

func TestHubSendWithoutJoinProducesError(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "US", Text: "hi"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room error, got %+v", ev)
	}
}

func TestHubEmptyMessageErrorsSenderOnly(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	bob := NewClient("b")
	joinRoom(hub, alice, "US", "alice")
	joinRoom(hub, bob, "US", "bob")

	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "US", Text: "   "}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeValidation {
		t.Fatalf("expected validation error, got %+v", ev)
	}
	mustNoEvent(t, bob.Events, EventRoomMessage)
	mustNoEvent(t, bob.Events, EventError)
}

func TestHubPersistenceErrorReportedToSenderOnly(t *testing.T) {
	st := newMemStore()
	hub, cancel := startHub(t, st)
	defer cancel()

	alice := NewClient("a")
	bob := NewClient("b")
	joinRoom(hub, alice, "US", "alice")
	joinRoom(hub, bob, "US", "bob")
	mustEvent(t, bob.Events, EventPresence)

	st.mu.Lock()
	st.appendErr = errStoreDown
	st.mu.Unlock()

	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "US", Text: "hi"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodePersistence {
		t.Fatalf("expected persistence error, got %+v", ev)
	}
	mustNoEvent(t, bob.Events, EventRoomMessage)
}

func TestHubPinBroadcastAndNotFound(t *testing.T) {
	st := newMemStore()
	hub, cancel := startHub(t, st)
	defer cancel()

	alice := NewClient("a")
	bob := NewClient("b")
	joinRoom(hub, alice, "US", "alice")
	joinRoom(hub, bob, "US", "bob")

	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "US", Text: "pin me"}
	msgEv := mustEvent(t, alice.Events, EventRoomMessage)
	mustEvent(t, bob.Events, EventRoomMessage)

	bob.Commands <- &Command{Kind: CommandPinMessage, MessageID: msgEv.Message.ID, Pinned: true}

	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventPinUpdate)
		if ev.Message.ID != msgEv.Message.ID || !ev.Message.Pinned || ev.Room != "US" {
			t.Fatalf("unexpected pin update for %s: %+v", c.ID, ev)
		}
	}

	// Same target value again: same end state, no error.
	bob.Commands <- &Command{Kind: CommandPinMessage, MessageID: msgEv.Message.ID, Pinned: true}
	ev := mustEvent(t, bob.Events, EventPinUpdate)
	if !ev.Message.Pinned {
		t.Fatalf("pin flag flipped by repeated pin: %+v", ev)
	}
	mustNoEvent(t, bob.Events, EventError)

	bob.Commands <- &Command{Kind: CommandPinMessage, MessageID: "ghost", Pinned: true}
	errEv := mustEvent(t, bob.Events, EventError)
	if errEv.Error == nil || errEv.Error.Code != ErrCodeNotFound {
		t.Fatalf("expected not_found error, got %+v", errEv)
	}
	mustNoEvent(t, alice.Events, EventError)
}

func TestHubDisconnectAnnouncesPresence(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	bob := NewClient("b")
	joinRoom(hub, alice, "US", "alice")
	joinRoom(hub, bob, "US", "bob")
	mustEvent(t, bob.Events, EventPresence)

	hub.UnregisterClient(alice)

	presence := mustEvent(t, bob.Events, EventPresence)
	if !equalUsers(presence.Users, []string{"bob"}) {
		t.Fatalf("presence after disconnect: %v", presence.Users)
	}
}

func TestHubSendBeforeDisconnectStillBroadcasts(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	bob := NewClient("b")
	joinRoom(hub, alice, "US", "alice")
	joinRoom(hub, bob, "US", "bob")
	mustEvent(t, bob.Events, EventPresence)

	// Queue a send and disconnect immediately after; the message must
	// not be retracted by the sender's departure.
	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "US", Text: "parting words"}
	hub.UnregisterClient(alice)

	ev := mustEvent(t, bob.Events, EventRoomMessage)
	if ev.Message.Text != "parting words" || ev.Message.From != "alice" {
		t.Fatalf("unexpected message: %+v", ev.Message)
	}
	presence := mustEvent(t, bob.Events, EventPresence)
	if !equalUsers(presence.Users, []string{"bob"}) {
		t.Fatalf("presence after disconnect: %v", presence.Users)
	}
}

func TestHubSwitchRoomAnnouncesBothRooms(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	bob := NewClient("b")
	joinRoom(hub, alice, "US", "alice")
	joinRoom(hub, bob, "US", "bob")
	mustEvent(t, bob.Events, EventPresence)

	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "UK", User: "alice"}

	presence := mustEvent(t, bob.Events, EventPresence)
	if !equalUsers(presence.Users, []string{"bob"}) {
		t.Fatalf("old room presence after switch: %v", presence.Users)
	}

	history := mustEvent(t, alice.Events, EventHistory)
	if history.Room != "UK" {
		t.Fatalf("history for wrong room: %+v", history)
	}
}

func TestHubJoinWithoutUsernameProducesError(t *testing.T) {
	hub, cancel := startHub(t, newMemStore())
	defer cancel()

	alice := NewClient("a")
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "US"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeValidation {
		t.Fatalf("expected validation error, got %+v", ev)
	}
}
