// Package chats keeps the conversation list in sync with the backend.
package chats

import (
	"context"
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
	UnknownCreator = "Unknown Creator"
	NoSkills       = "No skills defined"
)

// Conversation is a chat as shown in the list.
type Conversation struct {
	ID          string
	DisplayName string
	AvatarURL   string
	// LastMessagePreview carries the backend's skills text; the list
	// endpoint returns no message preview.
	LastMessagePreview string
	CreatedAt          time.Time
	IsCreator          bool
}

// Backend is the subset of the remote client the list needs.
type Backend interface {
	ListChats(ctx context.Context, token string) ([]disa.Chat, error)
}

// Config tunes the list query.
type Config struct {
	StaleTime            time.Duration
	Retries              int
	Backoff              func(n int) time.Duration
	PlaceholderAvatarURL string
}

// Service serves the conversation list from the query cache.
type Service struct {
	backend Backend
	cache   *query.Client
	list    *query.Query[[]Conversation]
	cfg     Config
	bus     *bus.Bus
	log     *zap.Logger
}

// NewService creates the list synchronizer.
func NewService(backend Backend, cache *query.Client, cfg Config, b *bus.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		backend: backend,
		cache:   cache,
		list: query.New[[]Conversation](cache, query.Options{
			StaleTime:   cfg.StaleTime,
			Retry:       cfg.Retries,
			ShouldRetry: disa.Retryable,
			Backoff:     cfg.Backoff,
		}),
		cfg: cfg,
		bus: b,
		log: log,
	}
}

// Key is the cache key of the list for token.
func Key(token string) query.Key {
	return query.K("chats", token)
}

// List returns the user's conversations. It fails with query.ErrDisabled
// unless st is authenticated.
func (s *Service) List(ctx context.Context, st auth.State) ([]Conversation, error) {
	if !st.IsAuthenticated() {
		return nil, query.ErrDisabled
	}
	token := st.Token
	convs, err := s.list.Fetch(ctx, Key(token), func(ctx context.Context) ([]Conversation, error) {
		raw, err := s.backend.ListChats(ctx, token)
		if err != nil {
			return nil, err
		}
		out := make([]Conversation, 0, len(raw))
		for _, c := range raw {
			out = append(out, Map(c, s.cfg.PlaceholderAvatarURL))
		}
		s.log.Debug("conversation list fetched", zap.Int("count", len(out)))
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(convs), nil
}

// Invalidate marks every cached list stale.
func (s *Service) Invalidate() {
	s.cache.Invalidate(query.K("chats"))
	s.bus.Emit(bus.KindChatsInvalidated, nil)
}

// Map converts a backend chat, filling defaults for missing fields.
func Map(c disa.Chat, placeholderAvatar string) Conversation {
	conv := Conversation{
		ID:                 c.ChatID.String(),
		DisplayName:        c.CreatorName,
		AvatarURL:          c.GroupIconURL,
		LastMessagePreview: c.Skills,
		IsCreator:          c.IsCreator,
	}
	if strings.TrimSpace(conv.DisplayName) == "" {
		conv.DisplayName = UnknownCreator
	}
	if conv.AvatarURL == "" {
		conv.AvatarURL = placeholderAvatar
	}
	if conv.LastMessagePreview == "" {
		conv.LastMessagePreview = NoSkills
	}
	if t, ok := c.CreatedAt.Time(); ok {
		conv.CreatedAt = t
	}
	return conv
}

// Matches reports whether term occurs, case-insensitively, in the display
// name or preview. A blank term matches everything.
func Matches(c Conversation, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(c.DisplayName), term) ||
		strings.Contains(strings.ToLower(c.LastMessagePreview), term)
}

// Filter returns the conversations matching term, in order.
func Filter(list []Conversation, term string) []Conversation {
	out := make([]Conversation, 0, len(list))
	for _, c := range list {
		if Matches(c, term) {
			out = append(out, c)
		}
	}
	return out
}
