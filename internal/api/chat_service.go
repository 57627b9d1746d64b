package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/actions"
	"github.com/matheus3301/disa/internal/auth"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/chats"
	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/transcript"
)

// ChatService implements rpc.ChatServer.
type ChatService struct {
	auth    *auth.Manager
	chats   *chats.Service
	actions *actions.Service
	bus     *bus.Bus
	log     *zap.Logger
}

// NewChatService creates the chat service.
func NewChatService(m *auth.Manager, c *chats.Service, a *actions.Service, b *bus.Bus, log *zap.Logger) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{auth: m, chats: c, actions: a, bus: b, log: log}
}

func (s *ChatService) ListChats(ctx context.Context, req *rpc.ListChatsRequest) (*rpc.ListChatsResponse, error) {
	if req.Refresh {
		s.chats.Invalidate()
	}
	list, err := s.chats.List(ctx, s.auth.State())
	if err != nil {
		return nil, toStatus(s.bus, s.log, "list chats", err)
	}
	list = chats.Filter(list, req.Filter)
	out := make([]rpc.Chat, 0, len(list))
	for _, c := range list {
		out = append(out, chatToRPC(c))
	}
	return &rpc.ListChatsResponse{Chats: out}, nil
}

func (s *ChatService) DeleteChat(ctx context.Context, req *rpc.ChatRequest) (*rpc.Empty, error) {
	if err := s.actions.Delete(ctx, s.auth.State(), req.ChatID); err != nil {
		return nil, toStatus(s.bus, s.log, "delete chat", err)
	}
	return &rpc.Empty{}, nil
}

func (s *ChatService) ReportChat(ctx context.Context, req *rpc.ChatRequest) (*rpc.Empty, error) {
	if err := s.actions.Report(ctx, s.auth.State(), req.ChatID); err != nil {
		return nil, toStatus(s.bus, s.log, "report chat", err)
	}
	return &rpc.Empty{}, nil
}

func (s *ChatService) ListMembers(ctx context.Context, req *rpc.ChatRequest) (*rpc.ListMembersResponse, error) {
	members, err := s.actions.Members(ctx, s.auth.State(), req.ChatID)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "list members", err)
	}
	out := make([]rpc.Member, 0, len(members))
	for _, m := range members {
		out = append(out, rpc.Member{ID: m.ID, Name: m.Name, IsMember: m.IsMember, Blocked: m.Blocked})
	}
	return &rpc.ListMembersResponse{Members: out}, nil
}

func (s *ChatService) CreateChat(ctx context.Context, req *rpc.CreateChatRequest) (*rpc.CreateChatResponse, error) {
	id, err := s.actions.Create(ctx, s.auth.State(), actions.NewChat{Name: req.Name, Description: req.Description})
	if err != nil {
		return nil, toStatus(s.bus, s.log, "create chat", err)
	}
	return &rpc.CreateChatResponse{ChatID: id}, nil
}

func (s *ChatService) GetTranscript(ctx context.Context, req *rpc.GetTranscriptRequest) (*rpc.GetTranscriptResponse, error) {
	text, err := s.actions.Transcript(ctx, s.auth.State(), req.ChatID)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "transcript", err)
	}
	return &rpc.GetTranscriptResponse{Title: transcript.Title(req.Name), Text: text}, nil
}

func chatToRPC(c chats.Conversation) rpc.Chat {
	out := rpc.Chat{
		ID:                 c.ID,
		DisplayName:        c.DisplayName,
		AvatarURL:          c.AvatarURL,
		LastMessagePreview: c.LastMessagePreview,
		IsCreator:          c.IsCreator,
	}
	if !c.CreatedAt.IsZero() {
		out.CreatedAtUnixMs = c.CreatedAt.UnixMilli()
	}
	return out
}
