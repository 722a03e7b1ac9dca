package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/ezchat/ezchat-server/internal/config"
	"github.com/ezchat/ezchat-server/internal/core"
	"github.com/ezchat/ezchat-server/internal/proto"
	"github.com/ezchat/ezchat-server/internal/store/sqlite"
)

// startTestServer spins up the full stack on an in-memory database and
// returns the test server plus the store for seeding records directly.
func startTestServer(t *testing.T) (*httptest.Server, *sqlite.MessageStore) {
	t.Helper()

	logger := zerolog.Nop()

	st, err := sqlite.New(":memory:", sqlite.Options{})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	hub := core.NewHub(st, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		st.Close()
	})

	return ts, st
}

// outboundFrame mirrors proto.Outbound with raw data for assertions.
type outboundFrame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error,omitempty"`
}

// readUntil reads frames until one of the wanted type arrives.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string) outboundFrame {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("waiting for %q frame: %v", typ, err)
		}
		if frame.Type == typ {
			return frame
		}
	}
}

func sendInbound(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %q payload: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %q: %v", typ, err)
	}
}
