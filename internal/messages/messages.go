// Package messages keeps one conversation's thread in sync and sends messages.
package messages

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/auth"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/disa"
	"github.com/matheus3301/disa/internal/query"
)

const (
	UnknownSender = "Unknown"
	NoContent     = "No content"
)

// ErrEmptyMessage is returned by Send for a blank body.
var ErrEmptyMessage = errors.New("message is empty")

// Message is one entry of a thread.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	Body           string
	SentAt         time.Time
}

// Backend is the subset of the remote client the thread needs.
type Backend interface {
	ListMessages(ctx context.Context, token, chatID string) ([]disa.Message, error)
	SendMessage(ctx context.Context, token, chatID, content string) (*disa.Message, error)
}

// ConversationList is the conversation list cache a successful send stales.
type ConversationList interface {
	Invalidate()
}

// Service serves threads from the query cache.
type Service struct {
	backend Backend
	cache   *query.Client
	lists   ConversationList
	thread  *query.Query[[]Message]
	bus     *bus.Bus
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates the thread synchronizer. Threads are fresh for staleTime
// and failed fetches are not retried.
func NewService(backend Backend, cache *query.Client, lists ConversationList, staleTime time.Duration, b *bus.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		backend: backend,
		cache:   cache,
		lists:   lists,
		thread:  query.New[[]Message](cache, query.Options{StaleTime: staleTime}),
		bus:     b,
		log:     log,
		now:     time.Now,
	}
}

// Key is the cache key of a thread.
func Key(conversationID, token string) query.Key {
	return query.K("messages", conversationID, token)
}

// List returns the messages of conversationID in backend order.
func (s *Service) List(ctx context.Context, st auth.State, conversationID string) ([]Message, error) {
	if !st.IsAuthenticated() || conversationID == "" {
		return nil, query.ErrDisabled
	}
	token := st.Token
	msgs, err := s.thread.Fetch(ctx, Key(conversationID, token), func(ctx context.Context) ([]Message, error) {
		raw, err := s.backend.ListMessages(ctx, token, conversationID)
		if err != nil {
			return nil, err
		}
		out := make([]Message, 0, len(raw))
		for _, m := range raw {
			out = append(out, Map(conversationID, m, s.now))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(msgs), nil
}

// Invalidate marks the cached thread of conversationID stale.
func (s *Service) Invalidate(conversationID string) {
	s.cache.Invalidate(query.K("messages", conversationID))
}

// Send posts body to conversationID. On success the thread and the
// conversation list are invalidated so the next List refetches.
func (s *Service) Send(ctx context.Context, st auth.State, conversationID, body string) (*Message, error) {
	if !st.IsAuthenticated() || conversationID == "" {
		return nil, query.ErrDisabled
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	sent, err := s.backend.SendMessage(ctx, st.Token, conversationID, body)
	if err != nil {
		s.log.Warn("send failed", zap.String("chat_id", conversationID), zap.Error(err))
		s.bus.Emit(bus.KindMessageSendFailed, bus.MessageRef{ChatID: conversationID, Error: err.Error()})
		return nil, err
	}

	s.Invalidate(conversationID)
	s.lists.Invalidate()

	msg := &Message{
		ConversationID: conversationID,
		SenderID:       st.User.ID,
		SenderName:     st.User.Name,
		Body:           body,
		SentAt:         s.now(),
	}
	if sent != nil {
		m := Map(conversationID, *sent, s.now)
		msg = &m
	}
	s.bus.Emit(bus.KindMessageSent, bus.MessageRef{ChatID: conversationID, MessageID: msg.ID})
	return msg, nil
}

// Map converts a backend message, filling defaults for missing fields.
func Map(conversationID string, m disa.Message, now func() time.Time) Message {
	msg := Message{
		ID:             m.MessageID.String(),
		ConversationID: conversationID,
		SenderID:       m.SenderID.String(),
		SenderName:     m.SenderName,
		Body:           m.Message,
		SentAt:         ParseTimestampOrNow(string(m.SentAt), now),
	}
	if strings.TrimSpace(msg.SenderName) == "" {
		msg.SenderName = UnknownSender
	}
	if msg.Body == "" {
		msg.Body = NoContent
	}
	return msg
}

// ParseTimestampOrNow parses raw with any layout the backend uses and falls
// back to now() when raw is missing or unparseable.
func ParseTimestampOrNow(raw string, now func() time.Time) time.Time {
	if t, ok := disa.ParseTime(raw); ok {
		return t
	}
	return now()
}
