package chat

import "errors"

// Routing and store error taxonomy. All of these are terminal for the
// individual request only; they are surfaced to the originating connection
// as a status notice and never tear down the connection.
var (
	// ErrEmptyMessage rejects a send with missing or empty content.
	ErrEmptyMessage = errors.New("chat: message content is empty")

	// ErrRecipientNotFound rejects a private send whose recipient
	// username does not resolve to a known identity.
	ErrRecipientNotFound = errors.New("chat: recipient not found")

	// ErrSelfMessage rejects a private send addressed to the sender.
	ErrSelfMessage = errors.New("chat: cannot send a private message to yourself")

	// ErrInvalidVisibility rejects a message that sets both or neither of
	// room and recipient, or carries an unknown visibility discriminator.
	ErrInvalidVisibility = errors.New("chat: exactly one of room and recipient must be set")
)
