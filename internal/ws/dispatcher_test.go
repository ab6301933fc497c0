package ws

import (
	"testing"
	"time"

	"github.com/TVLlam/CHAT-AES/internal/identity"
	"github.com/TVLlam/CHAT-AES/internal/protocol"
)

func newTestDispatcher() (*MessageDispatcher, *Server) {
	srv := NewServer(DefaultServerConfig(), nil, nil)
	return NewMessageDispatcher(srv), srv
}

func TestDispatchRoutesToRegisteredHandler(t *testing.T) {
	d, _ := newTestDispatcher()

	var got protocol.SendMessageMsg
	called := false
	d.Register(protocol.TypeSendMessage, func(conn *Connection, payload interface{}) {
		called = true
		got = payload.(protocol.SendMessageMsg)
	})

	conn := &Connection{ID: "c1", Identity: identity.Identity{ID: 1, Username: "alice"}}
	d.Dispatch(conn, []byte(`{"type":"send_message","message":"hi","visibility":"public"}`))

	if !called {
		t.Fatal("expected send_message handler to be called")
	}
	if got.Message != "hi" || got.Visibility != "public" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestDispatchUnknownTypeDoesNotInvokeHandlers(t *testing.T) {
	d, _ := newTestDispatcher()

	called := false
	d.Register(protocol.TypeSendMessage, func(conn *Connection, payload interface{}) {
		called = true
	})

	conn := &Connection{ID: "c1"}
	d.Dispatch(conn, []byte(`{"type":"subscribe","channel":"general"}`))

	if called {
		t.Error("handler should not run for an unknown message type")
	}
}

func TestDispatchToleratesMalformedFrames(t *testing.T) {
	d, _ := newTestDispatcher()
	conn := &Connection{ID: "c1"}

	// None of these may panic; the connection stays up.
	d.Dispatch(conn, []byte(`not json`))
	d.Dispatch(conn, []byte(`{}`))
	d.Dispatch(conn, []byte(`{"type":"send_message","message":42}`))
}

func TestPingRefreshesLiveness(t *testing.T) {
	d, _ := newTestDispatcher()

	stale := time.Now().Add(-time.Hour)
	conn := &Connection{ID: "c1"}
	conn.lastPing.Store(stale.UnixNano())

	d.Dispatch(conn, []byte(`{"type":"ping"}`))

	if !conn.LastActive().After(stale) {
		t.Error("ping should advance the liveness timestamp")
	}
}
