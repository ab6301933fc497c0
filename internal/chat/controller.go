package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/TVLlam/CHAT-AES/internal/identity"
	"github.com/TVLlam/CHAT-AES/internal/metrics"
	"github.com/TVLlam/CHAT-AES/internal/presence"
	"github.com/TVLlam/CHAT-AES/internal/protocol"
)

// SessionRecorder mirrors live connections into an external session store
// for operational visibility. Recording failures are logged, never fatal.
type SessionRecorder interface {
	Create(ctx context.Context, connID string, ident identity.Identity) error
	Delete(ctx context.Context, connID string) error
}

// Controller orchestrates the connection lifecycle: registering a freshly
// authenticated connection with the presence registry, replaying history,
// and unwinding all of it on disconnect. The transport layer runs the
// authentication gate before either method is reached; unauthenticated
// connects never get here.
type Controller struct {
	registry *presence.Registry
	store    Store
	room     *Room
	deliver  Deliverer
	sessions SessionRecorder
	events   Events
}

// NewController creates a Controller over the given collaborators.
func NewController(reg *presence.Registry, store Store, room *Room, deliver Deliverer) *Controller {
	return &Controller{
		registry: reg,
		store:    store,
		room:     room,
		deliver:  deliver,
	}
}

// SetSessions attaches an optional session recorder.
func (c *Controller) SetSessions(s SessionRecorder) { c.sessions = s }

// SetEvents attaches an optional event publisher.
func (c *Controller) SetEvents(e Events) { c.events = e }

// HandleConnect registers an authenticated connection and replays the
// identity's visible history to that connection only. Registration
// happens before the history query is issued: a message arriving in that
// window may be delivered both live and in the replay, which is preferred
// over it being missed entirely.
func (c *Controller) HandleConnect(ctx context.Context, connID string, ident identity.Identity) {
	first := c.registry.Register(ident.ID, connID)
	c.room.Join(connID)
	metrics.OnlineIdentities.Set(float64(c.registry.OnlineCount()))

	if c.sessions != nil {
		if err := c.sessions.Create(ctx, connID, ident); err != nil {
			log.Printf("[lifecycle] failed to record session conn=%s: %v", connID, err)
		}
	}
	if first && c.events != nil {
		c.events.IdentityOnline(ident)
	}

	log.Printf("[lifecycle] user %s (id=%d) connected conn=%s (connections for user: %d)",
		ident.Username, ident.ID, connID, len(c.registry.ConnectionsOf(ident.ID)))

	c.send(connID, protocol.TypeWelcome, protocol.WelcomeMsg{
		Msg: fmt.Sprintf("welcome, %s!", ident.Username),
	})

	c.replayHistory(ctx, connID, ident)
}

// HandleDisconnect unwinds a connection's presence state. A disconnect
// for a connection that never finished registering is benign and logged
// as a no-op.
func (c *Controller) HandleDisconnect(ctx context.Context, connID string) {
	c.room.Leave(connID)

	if c.sessions != nil {
		if err := c.sessions.Delete(ctx, connID); err != nil {
			log.Printf("[lifecycle] failed to delete session conn=%s: %v", connID, err)
		}
	}

	identityID, found, last := c.registry.Unregister(connID)
	if !found {
		log.Printf("[lifecycle] disconnect for unregistered conn=%s (no-op)", connID)
		return
	}
	metrics.OnlineIdentities.Set(float64(c.registry.OnlineCount()))

	if last {
		log.Printf("[lifecycle] identity %d is now offline (conn=%s was its last connection)", identityID, connID)
		if c.events != nil {
			c.events.IdentityOffline(identityID)
		}
	} else {
		log.Printf("[lifecycle] identity %d dropped conn=%s, %d connection(s) remain",
			identityID, connID, len(c.registry.ConnectionsOf(identityID)))
	}
}

// replayHistory sends a single point-in-time history snapshot, ascending
// by timestamp, to the freshly connected connection only.
func (c *Controller) replayHistory(ctx context.Context, connID string, ident identity.Identity) {
	messages, err := c.store.QueryVisibleTo(ctx, ident.ID)
	if err != nil {
		log.Printf("[lifecycle] history query failed for identity=%d: %v", ident.ID, err)
		c.send(connID, protocol.TypeStatus, protocol.StatusMsg{Msg: "error: message history is unavailable"})
		return
	}

	entries := make([]protocol.HistoryEntry, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		entries = append(entries, protocol.HistoryEntry{
			Sender:    m.SenderName,
			Content:   m.Content,
			Timestamp: m.CreatedAt.Format(protocol.TimestampLayout),
			Kind:      m.Kind(),
			Receiver:  m.RecipientName,
		})
	}

	metrics.HistoryReplaySize.Observe(float64(len(entries)))
	c.send(connID, protocol.TypeHistory, protocol.HistoryMsg{Messages: entries})
}

// send encodes and delivers one server message to a single connection.
// Delivery failures are logged only; the disconnect path owns cleanup.
func (c *Controller) send(connID string, msgType string, payload interface{}) {
	data, err := protocol.NewServerMessage(msgType, payload)
	if err != nil {
		log.Printf("[lifecycle] failed to encode %s for conn=%s: %v", msgType, connID, err)
		return
	}
	if err := c.deliver.Send(connID, data); err != nil {
		log.Printf("[lifecycle] failed to send %s to conn=%s: %v", msgType, connID, err)
	}
}
