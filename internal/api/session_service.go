package api

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/auth"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/credstore"
	"github.com/matheus3301/disa/internal/disa"
	"github.com/matheus3301/disa/internal/query"
	"github.com/matheus3301/disa/internal/rpc"
)

const minOTPLength = 6

// SignInBackend is the subset of the remote client used for authentication.
type SignInBackend interface {
	RequestOTP(ctx context.Context, email string) (string, error)
	SignIn(ctx context.Context, email, otp string) (*disa.SignInResponse, error)
	BaseURL() string
}

// SessionService implements rpc.SessionServer.
type SessionService struct {
	profile   string
	startedAt time.Time
	auth      *auth.Manager
	backend   SignInBackend
	cache     *query.Client
	bus       *bus.Bus
	gatherer  prometheus.Gatherer
	log       *zap.Logger
}

// NewSessionService creates the session service.
func NewSessionService(profile string, m *auth.Manager, backend SignInBackend, cache *query.Client, b *bus.Bus, g prometheus.Gatherer, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		profile:   profile,
		startedAt: time.Now(),
		auth:      m,
		backend:   backend,
		cache:     cache,
		bus:       b,
		gatherer:  g,
		log:       log,
	}
}

func (s *SessionService) GetStatus(_ context.Context, _ *rpc.GetStatusRequest) (*rpc.GetStatusResponse, error) {
	st := s.auth.State()
	return &rpc.GetStatusResponse{
		Profile:  s.profile,
		Status:   string(st.Status),
		User:     userToRPC(st),
		APIURL:   s.backend.BaseURL(),
		UptimeMs: time.Since(s.startedAt).Milliseconds(),
	}, nil
}

func (s *SessionService) RequestOTP(ctx context.Context, req *rpc.RequestOTPRequest) (*rpc.RequestOTPResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "request otp", err)
	}
	msg, err := s.backend.RequestOTP(ctx, email)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "request otp", err)
	}
	s.log.Info("otp requested")
	return &rpc.RequestOTPResponse{Message: msg}, nil
}

func (s *SessionService) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.SignInResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "sign in", err)
	}
	otp := strings.TrimSpace(req.OTP)
	if len(otp) < minOTPLength {
		return nil, toStatus(s.bus, s.log, "sign in", errOTPTooShort)
	}

	resp, err := s.backend.SignIn(ctx, email, otp)
	if err != nil {
		return nil, toStatus(s.bus, s.log, "sign in", err)
	}

	st, err := s.auth.Login(recordFromSignIn(resp), func(st auth.State) {
		s.log.Info("session committed", zap.String("user_id", st.User.ID))
	})
	if err != nil {
		return nil, toStatus(s.bus, s.log, "sign in", err)
	}
	return &rpc.SignInResponse{Status: string(st.Status), User: userToRPC(st)}, nil
}

func (s *SessionService) Logout(_ context.Context, _ *rpc.LogoutRequest) (*rpc.LogoutResponse, error) {
	if err := s.auth.Logout(); err != nil {
		return nil, toStatus(s.bus, s.log, "logout", err)
	}
	n := s.cache.Remove(query.K())
	s.log.Debug("cache cleared", zap.Int("entries", n))
	return &rpc.LogoutResponse{Status: string(s.auth.State().Status)}, nil
}

func (s *SessionService) RotateToken(_ context.Context, req *rpc.RotateTokenRequest) (*rpc.Empty, error) {
	if err := s.auth.SetToken(strings.TrimSpace(req.Token)); err != nil {
		return nil, toStatus(s.bus, s.log, "rotate token", err)
	}
	return &rpc.Empty{}, nil
}

func (s *SessionService) GetMetrics(_ context.Context, _ *rpc.GetMetricsRequest) (*rpc.GetMetricsResponse, error) {
	if s.gatherer == nil {
		return &rpc.GetMetricsResponse{}, nil
	}
	families, err := s.gatherer.Gather()
	if err != nil {
		return nil, toStatus(s.bus, s.log, "gather metrics", err)
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, toStatus(s.bus, s.log, "encode metrics", err)
		}
	}
	return &rpc.GetMetricsResponse{Text: buf.String()}, nil
}

func (s *SessionService) WatchEvents(req *rpc.WatchEventsRequest, stream rpc.EventStream) error {
	ch, unsub := s.bus.Subscribe(req.Prefix, 256)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			if err := stream.Send(eventToRPC(evt)); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("%w: %q", errInvalidEmail, raw)
	}
	return addr.Address, nil
}

func recordFromSignIn(r *disa.SignInResponse) *credstore.Record {
	return &credstore.Record{
		ID:             r.ID.String(),
		Email:          r.Email,
		Name:           r.Name,
		Industry:       r.Industry,
		Specialization: r.Specialization,
		Checklist:      r.Checklist,
		ProfilePicURL:  r.ProfilePicURL,
		AccessToken:    r.AccessToken,
	}
}

func userToRPC(st auth.State) *rpc.User {
	if st.User == nil {
		return nil
	}
	u := st.User
	out := &rpc.User{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Industry:       u.Industry,
		Specialization: u.Specialization,
		Checklist:      u.Checklist,
		ProfilePicURL:  u.ProfilePicURL,
	}
	if !u.IssuedAt.IsZero() {
		out.IssuedAtUnixMs = u.IssuedAt.UnixMilli()
	}
	return out
}

func eventToRPC(evt bus.Event) *rpc.Event {
	out := &rpc.Event{
		ID:               evt.ID,
		Kind:             evt.Kind,
		OccurredAtUnixMs: evt.Timestamp.UnixMilli(),
	}
	switch p := evt.Payload.(type) {
	case bus.StatusChange:
		out.From, out.To = p.From, p.To
	case bus.ChatRef:
		out.ChatID, out.Name = p.ChatID, p.Name
	case bus.MessageRef:
		out.ChatID, out.MessageID, out.Error = p.ChatID, p.MessageID, p.Error
	case string:
		out.Name = p
	}
	return out
}
