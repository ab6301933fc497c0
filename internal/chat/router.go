package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TVLlam/CHAT-AES/internal/identity"
	"github.com/TVLlam/CHAT-AES/internal/metrics"
	"github.com/TVLlam/CHAT-AES/internal/presence"
	"github.com/TVLlam/CHAT-AES/internal/protocol"
)

// Deliverer writes one outbound frame to a specific live connection. A
// failed Send means the transport is already going away; callers must not
// retry, cleanup is driven by the disconnect path.
type Deliverer interface {
	Send(connID string, data []byte) error
}

// Throttle limits how fast an identity may send messages. Implementations
// fail open on backend errors.
type Throttle interface {
	AllowMessage(ctx context.Context, identityID int64) bool
}

// Events receives notifications about accepted messages and presence
// transitions, for publication to external consumers.
type Events interface {
	MessageAccepted(m *Message)
	IdentityOnline(ident identity.Identity)
	IdentityOffline(identityID int64)
}

// Router is the routing engine. For each inbound send_message request it
// validates the payload, persists the message, and fans it out to the
// resolved target connections. Persistence always happens before any
// delivery so a history query issued right after an observed delivery is
// consistent with what was broadcast.
type Router struct {
	store     Store
	directory identity.Directory
	registry  *presence.Registry
	room      *Room
	deliver   Deliverer
	throttle  Throttle
	events    Events
	now       func() time.Time
}

// NewRouter creates a Router over the given collaborators.
func NewRouter(store Store, dir identity.Directory, reg *presence.Registry, room *Room, deliver Deliverer) *Router {
	return &Router{
		store:     store,
		directory: dir,
		registry:  reg,
		room:      room,
		deliver:   deliver,
		now:       time.Now,
	}
}

// SetThrottle attaches an optional per-identity message rate limit.
func (r *Router) SetThrottle(t Throttle) { r.throttle = t }

// SetEvents attaches an optional event publisher.
func (r *Router) SetEvents(e Events) { r.events = e }

// HandleSend processes one send_message request from the connection
// identified by originConnID, owned by sender. Every rejection is
// surfaced to the originating connection as a status notice; rejections
// never terminate the connection or affect later requests.
func (r *Router) HandleSend(ctx context.Context, originConnID string, sender identity.Identity, req protocol.SendMessageMsg) {
	start := r.now()

	if r.throttle != nil && !r.throttle.AllowMessage(ctx, sender.ID) {
		log.Printf("[router] rate limited identity=%d conn=%s", sender.ID, originConnID)
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		r.notify(originConnID, "error: you are sending messages too quickly")
		return
	}

	if err := ValidateContent(req.Message); err != nil {
		log.Printf("[router] invalid content from identity=%d conn=%s: %v", sender.ID, originConnID, err)
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		r.notify(originConnID, "error: "+rejectionText(err, ""))
		return
	}

	msg := &Message{
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Content:    req.Message,
		CreatedAt:  r.now().UTC(),
	}

	var recipient *identity.Identity
	switch req.Visibility {
	case protocol.VisibilityPrivate:
		if req.RecipientUsername == "" {
			metrics.MessagesTotal.WithLabelValues("rejected").Inc()
			r.notify(originConnID, "error: recipient is required for private messages")
			return
		}
		resolved, err := r.resolveRecipient(ctx, sender, req.RecipientUsername)
		if err != nil {
			log.Printf("[router] private send rejected identity=%d: %v", sender.ID, err)
			metrics.MessagesTotal.WithLabelValues("rejected").Inc()
			r.notify(originConnID, "error: "+rejectionText(err, req.RecipientUsername))
			return
		}
		recipient = resolved
		msg.RecipientID = &resolved.ID
		msg.RecipientName = resolved.Username

	case protocol.VisibilityPublic, "":
		room := req.Room
		if room == "" {
			room = r.room.Name()
		}
		msg.Room = &room

	default:
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		r.notify(originConnID, fmt.Sprintf("error: unknown message visibility %q", req.Visibility))
		return
	}

	// Persist before fan-out. A store failure is fatal to this request:
	// delivering a message that was never written would break the
	// write-then-broadcast ordering.
	if _, err := r.store.Append(ctx, msg); err != nil {
		log.Printf("[router] append failed for identity=%d: %v", sender.ID, err)
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		r.notify(originConnID, "error: message could not be saved")
		return
	}

	payload := protocol.ReceiveMessageMsg{
		Sender:    msg.SenderName,
		Message:   msg.Content,
		Timestamp: msg.CreatedAt.Format(protocol.TimestampLayout),
		Kind:      msg.Kind(),
		Receiver:  msg.RecipientName,
	}
	data, err := protocol.NewServerMessage(protocol.TypeReceiveMessage, payload)
	if err != nil {
		log.Printf("[router] failed to encode receive_message: %v", err)
		return
	}

	if msg.IsPrivate() {
		r.fanOutPrivate(originConnID, sender, recipient, data)
		metrics.MessagesTotal.WithLabelValues("private").Inc()
	} else {
		r.fanOutPublic(data)
		metrics.MessagesTotal.WithLabelValues("public").Inc()
	}

	if r.events != nil {
		r.events.MessageAccepted(msg)
	}
	metrics.MessageLatency.Observe(time.Since(start).Seconds())
}

// fanOutPublic delivers to every subscriber of the room. Zero subscribers
// is still a successful send; the message was already persisted.
func (r *Router) fanOutPublic(data []byte) {
	for _, connID := range r.room.Subscribers() {
		if err := r.deliver.Send(connID, data); err != nil {
			// Best effort per connection. The failed connection is
			// presumed disconnecting; its cleanup runs elsewhere.
			log.Printf("[router] public delivery to conn=%s failed: %v", connID, err)
		}
	}
}

// fanOutPrivate delivers to every live connection of the recipient plus
// every live connection of the sender except the originating one, so a
// sender's other open tabs see the outgoing message without the source
// tab double-receiving it. An offline recipient gets the message on their
// next connect via history replay.
func (r *Router) fanOutPrivate(originConnID string, sender identity.Identity, recipient *identity.Identity, data []byte) {
	for _, connID := range r.registry.ConnectionsOf(recipient.ID) {
		if err := r.deliver.Send(connID, data); err != nil {
			log.Printf("[router] private delivery to conn=%s failed: %v", connID, err)
		}
	}
	for _, connID := range r.registry.ConnectionsOf(sender.ID) {
		if connID == originConnID {
			continue
		}
		if err := r.deliver.Send(connID, data); err != nil {
			log.Printf("[router] sender-echo delivery to conn=%s failed: %v", connID, err)
		}
	}
}

// notify sends a status notice to the originating connection only.
func (r *Router) notify(connID string, text string) {
	data, err := protocol.NewServerMessage(protocol.TypeStatus, protocol.StatusMsg{Msg: text})
	if err != nil {
		log.Printf("[router] failed to encode status message: %v", err)
		return
	}
	if err := r.deliver.Send(connID, data); err != nil {
		log.Printf("[router] failed to send status to conn=%s: %v", connID, err)
	}
}

// resolveRecipient resolves a private send's recipient against the
// directory and applies the routing rules: the username must resolve and
// the recipient may not be the sender.
func (r *Router) resolveRecipient(ctx context.Context, sender identity.Identity, username string) (*identity.Identity, error) {
	resolved, err := r.directory.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrRecipientNotFound, username)
	}
	if resolved.ID == sender.ID {
		return nil, ErrSelfMessage
	}
	return resolved, nil
}

// rejectionText maps routing error sentinels to their user-facing wording.
func rejectionText(err error, recipient string) string {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return "message is empty"
	case errors.Is(err, ErrRecipientNotFound):
		return fmt.Sprintf("user %q not found", recipient)
	case errors.Is(err, ErrSelfMessage):
		return "cannot send a private message to yourself"
	}
	return err.Error()
}
