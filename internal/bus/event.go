package bus

import "time"

// Event kinds. Subscribers filter by prefix ("session.", "chats.", "messages.").
const (
	KindSessionStatusChanged = "session.status_changed"
	KindSessionAuthenticated = "session.authenticated"
	KindSessionUnauthorized  = "session.unauthorized"
	KindChatsInvalidated     = "chats.invalidated"
	KindChatDeleted          = "chats.deleted"
	KindChatCreated          = "chats.created"
	KindMessageSent          = "messages.sent"
	KindMessageSendFailed    = "messages.send_failed"
)

// Event represents a domain event published on the bus.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}

// StatusChange is the payload of session.status_changed.
type StatusChange struct {
	From string
	To   string
}

// ChatRef is the payload of chat-scoped events.
type ChatRef struct {
	ChatID string
	Name   string
}

// MessageRef is the payload of messages.* events.
type MessageRef struct {
	ChatID    string
	MessageID string
	Error     string
}
