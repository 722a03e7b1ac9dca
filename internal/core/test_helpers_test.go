package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ezchat/ezchat-server/internal/store"
)

// memStore is an in-memory store.MessageStore for hub tests.
type memStore struct {
	mu   sync.Mutex
	msgs []*store.Message
	seq  int

	appendErr error // forced failure for error-path tests
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) Append(_ context.Context, room, user, text string) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendErr != nil {
		return nil, m.appendErr
	}
	if strings.TrimSpace(text) == "" || len([]rune(text)) > 2000 {
		return nil, store.ErrInvalidText
	}

	m.seq++
	msg := &store.Message{
		ID:        "m" + strconv.Itoa(m.seq),
		Room:      room,
		User:      user,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	m.msgs = append(m.msgs, msg)
	return msg, nil
}

func (m *memStore) History(_ context.Context, room string) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*store.Message, 0)
	for _, msg := range m.msgs {
		if msg.Room == room {
			copied := *msg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) SetPinned(_ context.Context, id string, pinned bool) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range m.msgs {
		if msg.ID == id {
			msg.IsPinned = pinned
			copied := *msg
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) PurgeExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func (m *memStore) Close() error {
	return nil
}

var _ store.MessageStore = (*memStore)(nil)

var errStoreDown = fmt.Errorf("store down")

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func equalUsers(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
