package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/auth"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/rpc"
)

// MessageService implements rpc.MessageServer.
type MessageService struct {
	auth     *auth.Manager
	messages *messages.Service
	bus      *bus.Bus
	log      *zap.Logger
}

// NewMessageService creates the message service.
func NewMessageService(m *auth.Manager, msgs *messages.Service, b *bus.Bus, log *zap.Logger) *MessageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{auth: m, messages: msgs, bus: b, log: log}
}

func (s *MessageService) ListMessages(ctx context.Context, req *rpc.ListMessagesRequest) (*rpc.ListMessagesResponse, error) {
	if req.Refresh {
		s.messages.Invalidate(req.ChatID)
	}
	msgs, err := s.messages.List(ctx, s.auth.State(), req.ChatID)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "list messages", err)
	}
	out := make([]rpc.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToRPC(m))
	}
	return &rpc.ListMessagesResponse{Messages: out}, nil
}

func (s *MessageService) SendMessage(ctx context.Context, req *rpc.SendMessageRequest) (*rpc.SendMessageResponse, error) {
	msg, err := s.messages.Send(ctx, s.auth.State(), req.ChatID, req.Body)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "send message", err)
	}
	m := messageToRPC(*msg)
	return &rpc.SendMessageResponse{Message: &m}, nil
}

func messageToRPC(m messages.Message) rpc.Message {
	return rpc.Message{
		ID:           m.ID,
		ChatID:       m.ConversationID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		Body:         m.Body,
		SentAtUnixMs: m.SentAt.UnixMilli(),
	}
}
