package ws

import (
	"log"

	"github.com/TVLlam/CHAT-AES/internal/protocol"
)

// MessageHandler processes a parsed client message for a connection.
type MessageHandler func(conn *Connection, payload interface{})

// MessageDispatcher routes parsed client messages to registered handlers
// by message type. Malformed payloads and unknown types produce a status
// notice on the originating connection instead of tearing it down.
type MessageDispatcher struct {
	server   *Server
	handlers map[string]MessageHandler
}

// NewMessageDispatcher creates a dispatcher with the built-in ping
// handler pre-registered.
func NewMessageDispatcher(server *Server) *MessageDispatcher {
	d := &MessageDispatcher{
		server:   server,
		handlers: make(map[string]MessageHandler),
	}

	d.Register(protocol.TypePing, d.handlePing)

	return d
}

// Register associates a handler with a client message type.
func (d *MessageDispatcher) Register(msgType string, handler MessageHandler) {
	d.handlers[msgType] = handler
}

// Dispatch parses raw frame data and invokes the handler for its type.
// It is installed as the server's onMessage callback.
func (d *MessageDispatcher) Dispatch(conn *Connection, data []byte) {
	msgType, payload, err := protocol.ParseClientMessage(data)
	if err != nil {
		log.Printf("ws: invalid message from conn %s: %v", conn.ID, err)
		d.sendStatus(conn, "error: invalid message format")
		return
	}

	handler, ok := d.handlers[msgType]
	if !ok {
		log.Printf("ws: unsupported message type %q from conn %s", msgType, conn.ID)
		d.sendStatus(conn, "error: unsupported message type")
		return
	}

	handler(conn, payload)
}

// handlePing responds to an application-level ping with a pong and
// refreshes the connection's liveness timestamp.
func (d *MessageDispatcher) handlePing(conn *Connection, payload interface{}) {
	conn.Touch()

	pong, err := protocol.NewServerMessage(protocol.TypePong, protocol.PongMsg{})
	if err != nil {
		return
	}
	_ = d.server.Send(conn.ID, pong)
}

func (d *MessageDispatcher) sendStatus(conn *Connection, text string) {
	frame, err := protocol.NewServerMessage(protocol.TypeStatus, protocol.StatusMsg{Msg: text})
	if err != nil {
		return
	}
	_ = d.server.Send(conn.ID, frame)
}
