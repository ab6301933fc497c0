// Package messaging provides a NATS client that publishes chat and
// presence events for external consumers (audit pipelines, moderation
// workers, analytics). Routing never depends on NATS: delivery to live
// connections happens in-process, and a broker outage costs only the
// event firehose.
package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/TVLlam/CHAT-AES/internal/chat"
	"github.com/TVLlam/CHAT-AES/internal/identity"
)

// NATS subjects published by the chat server.
const (
	SubjectMessagePublic   = "chat.message.public"
	SubjectMessagePrivate  = "chat.message.private"
	SubjectPresenceOnline  = "presence.online"
	SubjectPresenceOffline = "presence.offline"
)

// MessageEvent is the payload published for every accepted message.
// Private message content is included because the payload is opaque
// ciphertext to this service; consumers see what the store sees.
type MessageEvent struct {
	ID         int64  `json:"id"`
	Sender     string `json:"sender"`
	SenderID   int64  `json:"sender_id"`
	Content    string `json:"content"`
	Kind       string `json:"kind"`
	Room       string `json:"room,omitempty"`
	Receiver   string `json:"receiver,omitempty"`
	ReceiverID int64  `json:"receiver_id,omitempty"`
	Ts         int64  `json:"ts"`
}

// PresenceEvent is published when an identity gains its first or loses
// its last live connection.
type PresenceEvent struct {
	IdentityID int64  `json:"identity_id"`
	Username   string `json:"username,omitempty"`
	Ts         int64  `json:"ts"`
}

// Config holds NATS connection settings.
type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Name:          "chat-server",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// Client wraps the NATS connection with helper methods for the chat
// event firehose. It implements the routing engine's Events interface.
type Client struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NewClient connects to NATS with the given config and returns a ready
// client. It returns an error if the initial connection fails.
func NewClient(config Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &Client{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// MessageAccepted publishes an accepted message to the firehose. Part of
// the chat.Events interface. Publish failures are logged, never fatal to
// the request that produced them.
func (c *Client) MessageAccepted(m *chat.Message) {
	ev := MessageEvent{
		ID:       m.ID,
		Sender:   m.SenderName,
		SenderID: m.SenderID,
		Content:  m.Content,
		Kind:     m.Kind(),
		Ts:       m.CreatedAt.Unix(),
	}
	subject := SubjectMessagePublic
	if m.IsPrivate() {
		subject = SubjectMessagePrivate
		ev.Receiver = m.RecipientName
		ev.ReceiverID = *m.RecipientID
	} else {
		ev.Room = *m.Room
	}
	c.publishJSON(subject, ev)
}

// IdentityOnline publishes a presence event for an identity gaining its
// first live connection. Part of the chat.Events interface.
func (c *Client) IdentityOnline(ident identity.Identity) {
	c.publishJSON(SubjectPresenceOnline, PresenceEvent{
		IdentityID: ident.ID,
		Username:   ident.Username,
		Ts:         time.Now().Unix(),
	})
}

// IdentityOffline publishes a presence event for an identity losing its
// last live connection. Part of the chat.Events interface.
func (c *Client) IdentityOffline(identityID int64) {
	c.publishJSON(SubjectPresenceOffline, PresenceEvent{
		IdentityID: identityID,
		Ts:         time.Now().Unix(),
	})
}

// SubscribeMessages registers a handler for all message events. Used by
// external consumers built on this package.
func (c *Client) SubscribeMessages(handler func(ev MessageEvent)) error {
	return c.subscribe("chat.message.*", func(msg *nats.Msg) {
		var ev MessageEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[nats] bad message event on %s: %v", msg.Subject, err)
			return
		}
		handler(ev)
	})
}

// SubscribePresence registers a handler for presence transitions. The
// online parameter distinguishes the two subjects.
func (c *Client) SubscribePresence(handler func(ev PresenceEvent, online bool)) error {
	return c.subscribe("presence.*", func(msg *nats.Msg) {
		var ev PresenceEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[nats] bad presence event on %s: %v", msg.Subject, err)
			return
		}
		handler(ev, msg.Subject == SubjectPresenceOnline)
	})
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}

func (c *Client) publishJSON(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[nats] marshal %s: %v", subject, err)
		return
	}
	if err := c.conn.Publish(subject, data); err != nil {
		log.Printf("[nats] publish %s: %v", subject, err)
	}
}

func (c *Client) subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}
