// Package protocol defines the WebSocket message types and structures used
// for communication between the chat client and server. All messages are
// serialized as JSON and follow a consistent envelope format with a type
// discriminator.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Client -> Server message types.
const (
	TypeSendMessage = "send_message"
	TypePing        = "ping"
)

// Server -> Client message types.
const (
	TypeWelcome        = "welcome"
	TypeHistory        = "history"
	TypeReceiveMessage = "receive_message"
	TypeStatus         = "status"
	TypePong           = "pong"
)

// Visibility values carried in chat payloads.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// TimestampLayout is the wire format for message timestamps (UTC).
const TimestampLayout = "2006-01-02 15:04:05"

// Envelope holds the message type and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It captures the
// full raw bytes and extracts only the "type" field so that the rest of
// the payload can be decoded later into the appropriate concrete struct.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("protocol: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// ---------------------------------------------------------------------------
// Client -> Server message structs
// ---------------------------------------------------------------------------

// SendMessageMsg is a chat message submitted by the client. Visibility is
// "public" (delivered to the room, defaulting to the fixed public room) or
// "private" (delivered to every live connection of the named recipient).
type SendMessageMsg struct {
	Type              string `json:"type"`
	Message           string `json:"message"`
	Visibility        string `json:"visibility"`
	RecipientUsername string `json:"recipient_username,omitempty"`
	Room              string `json:"room,omitempty"`
}

// PingMsg is a client-initiated keepalive ping.
type PingMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Server -> Client message structs
// ---------------------------------------------------------------------------

// WelcomeMsg greets a freshly authenticated connection.
type WelcomeMsg struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// HistoryEntry is one replayed message in a HistoryMsg. Receiver is set
// only for private messages.
type HistoryEntry struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"` // "public" or "private"
	Receiver  string `json:"receiver,omitempty"`
}

// HistoryMsg carries the full message history visible to the connecting
// identity, in ascending timestamp order.
type HistoryMsg struct {
	Type     string         `json:"type"`
	Messages []HistoryEntry `json:"messages"`
}

// ReceiveMessageMsg is a live chat message fanned out to its target
// connections. Receiver is set only for private messages.
type ReceiveMessageMsg struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Receiver  string `json:"receiver,omitempty"`
}

// StatusMsg is a non-fatal notice sent back to the originating connection
// only (validation failures, unknown recipients, rate limiting). It never
// terminates the connection.
type StatusMsg struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// PongMsg is the server's response to a client ping.
type PongMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// ParseClientMessage parses raw WebSocket bytes into a typed client
// message. It returns the message type string, the decoded struct, and any
// error encountered during parsing. An error is returned for unknown or
// server-only message types.
func ParseClientMessage(data []byte) (string, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("protocol: failed to parse message: %w", err)
	}

	var (
		msg interface{}
		err error
	)

	switch env.Type {
	case TypeSendMessage:
		var m SendMessageMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePing:
		var m PingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	default:
		return env.Type, nil, fmt.Errorf("protocol: unknown client message type: %q", env.Type)
	}

	if err != nil {
		return env.Type, nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	return env.Type, msg, nil
}

// NewServerMessage creates a JSON-encoded byte slice for a server message.
// The msgType is injected into the payload under the "type" key. The
// payload should be one of the server message structs; this function
// marshals it to JSON, injects the type field, and returns the final bytes.
func NewServerMessage(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal payload: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal payload into map: %w", err)
	}

	m["type"] = msgType

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal server message: %w", err)
	}
	return out, nil
}
