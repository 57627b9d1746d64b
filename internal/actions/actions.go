// Package actions implements the per-conversation operations: delete,
// report, member listing, transcript export and chat creation.
package actions

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/auth"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/disa"
	"github.com/matheus3301/disa/internal/query"
	"github.com/matheus3301/disa/internal/transcript"
)

// ErrNameRequired is returned by Create for a blank chat name.
var ErrNameRequired = errors.New("chat name is required")

// Member is one participant of a conversation.
type Member struct {
	ID       string
	Name     string
	IsMember bool
	Blocked  bool
}

// NewChat is the user input of the new-chat form.
type NewChat struct {
	Name        string
	Description string
}

// Backend is the subset of the remote client the actions need.
type Backend interface {
	DeleteChat(ctx context.Context, token, chatID string) error
	ReportChat(ctx context.Context, token, chatID string) error
	ListChatUsers(ctx context.Context, token, chatID string) ([]disa.Member, error)
	ListMessages(ctx context.Context, token, chatID string) ([]disa.Message, error)
	CreateChat(ctx context.Context, token string, nc disa.NewChat) (*disa.CreatedChat, error)
}

// ConversationList is the conversation list cache that deletes and creates stale.
type ConversationList interface {
	Invalidate()
}

// Service runs chat actions and keeps the cache consistent with them.
type Service struct {
	backend Backend
	cache   *query.Client
	lists   ConversationList
	members *query.Query[[]Member]
	bus     *bus.Bus
	log     *zap.Logger
}

// NewService creates the action service.
func NewService(backend Backend, cache *query.Client, lists ConversationList, b *bus.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		backend: backend,
		cache:   cache,
		lists:   lists,
		members: query.New[[]Member](cache, query.Options{}),
		bus:     b,
		log:     log,
	}
}

// Delete removes a conversation. On success the list is invalidated and
// every cached entry of the conversation is dropped.
func (s *Service) Delete(ctx context.Context, st auth.State, chatID string) error {
	if err := ready(st, chatID); err != nil {
		return err
	}
	if err := s.backend.DeleteChat(ctx, st.Token, chatID); err != nil {
		return err
	}
	s.lists.Invalidate()
	s.cache.Remove(query.K("messages", chatID))
	s.cache.Remove(query.K("members", chatID))
	s.log.Info("chat deleted", zap.String("chat_id", chatID))
	s.bus.Emit(bus.KindChatDeleted, bus.ChatRef{ChatID: chatID})
	return nil
}

// Report flags a conversation. Nothing cached changes.
func (s *Service) Report(ctx context.Context, st auth.State, chatID string) error {
	if err := ready(st, chatID); err != nil {
		return err
	}
	if err := s.backend.ReportChat(ctx, st.Token, chatID); err != nil {
		return err
	}
	s.log.Info("chat reported", zap.String("chat_id", chatID))
	return nil
}

// Members lists the participants. Concurrent calls share one request but
// every call after that refetches.
func (s *Service) Members(ctx context.Context, st auth.State, chatID string) ([]Member, error) {
	if err := ready(st, chatID); err != nil {
		return nil, err
	}
	token := st.Token
	return s.members.Fetch(ctx, query.K("members", chatID, token), func(ctx context.Context) ([]Member, error) {
		raw, err := s.backend.ListChatUsers(ctx, token, chatID)
		if err != nil {
			return nil, err
		}
		out := make([]Member, 0, len(raw))
		for _, m := range raw {
			out = append(out, Member{ID: m.ID.String(), Name: m.Name, IsMember: m.MemberStatus, Blocked: m.Blocked})
		}
		return out, nil
	})
}

// Transcript fetches the current messages of a conversation, bypassing the
// cache, and renders them as text.
func (s *Service) Transcript(ctx context.Context, st auth.State, chatID string) (string, error) {
	if err := ready(st, chatID); err != nil {
		return "", err
	}
	msgs, err := s.backend.ListMessages(ctx, st.Token, chatID)
	if err != nil {
		return "", err
	}
	return transcript.Format(msgs), nil
}

// Create opens a new conversation and returns its id. The welcome message
// carries the user's checklist and the template is derived from the user's
// industry and specialization when both are known.
func (s *Service) Create(ctx context.Context, st auth.State, nc NewChat) (string, error) {
	if !st.IsAuthenticated() {
		return "", query.ErrDisabled
	}
	name := strings.TrimSpace(nc.Name)
	if name == "" {
		return "", ErrNameRequired
	}
	req := disa.NewChat{
		Name:           name,
		Description:    strings.TrimSpace(nc.Description),
		WelcomeMessage: WelcomeMessage(st.User.Checklist),
		TemplatesID:    TemplatesID(st.User.Industry, st.User.Specialization),
	}
	created, err := s.backend.CreateChat(ctx, st.Token, req)
	if err != nil {
		return "", err
	}
	id := created.ChatID.String()
	s.lists.Invalidate()
	s.log.Info("chat created", zap.String("chat_id", id))
	s.bus.Emit(bus.KindChatCreated, bus.ChatRef{ChatID: id, Name: name})
	return id, nil
}

// WelcomeMessage is the first message of a new chat.
func WelcomeMessage(checklist string) string {
	return strings.TrimSpace("Checklist \n" + checklist)
}

// TemplatesID joins industry and specialization, or returns "" if either is missing.
func TemplatesID(industry, specialization string) string {
	if industry == "" || specialization == "" {
		return ""
	}
	return industry + " - " + specialization
}

func ready(st auth.State, chatID string) error {
	if !st.IsAuthenticated() || chatID == "" {
		return query.ErrDisabled
	}
	return nil
}
