package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/disa"
	"github.com/matheus3301/disa/internal/disatest"
	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/query"
	"github.com/matheus3301/disa/internal/rpc"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
		wantMsg  string
	}{
		{"invalid otp", fmt.Errorf("%w: %w", disa.ErrInvalidOTP, &disa.HTTPError{Status: 401}), codes.Unauthenticated, InvalidOTPMessage},
		{"sign-in failed", fmt.Errorf("%w: boom", disa.ErrSignInFailed), codes.Unavailable, SignInFailedMessage},
		{"otp request failed", fmt.Errorf("%w: %w", disa.ErrOTPRequestFailed, &disa.HTTPError{Status: 401}), codes.Unavailable, OTPFailedMessage},
		{"disabled", query.ErrDisabled, codes.FailedPrecondition, NotSignedInMessage},
		{"unreachable", &disa.UnreachableError{Method: "GET", Path: "/allchats", Err: errors.New("refused")}, codes.Unavailable, UnreachableMessage},
		{"empty message", messages.ErrEmptyMessage, codes.InvalidArgument, messages.ErrEmptyMessage.Error()},
		{"rejected", &disa.HTTPError{Method: "DELETE", Path: "/chats/1", Status: 403, Body: "forbidden"}, codes.Aborted, "delete rejected (403): forbidden"},
		{"canceled", context.Canceled, codes.Canceled, ""},
		{"other", errors.New("disk full"), codes.Internal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toStatus(nil, zap.NewNop(), "delete", tt.err)
			st := grpcstatus.Convert(err)
			if st.Code() != tt.wantCode {
				t.Errorf("code = %v, want %v", st.Code(), tt.wantCode)
			}
			if tt.wantMsg != "" && st.Message() != tt.wantMsg {
				t.Errorf("message = %q, want %q", st.Message(), tt.wantMsg)
			}
		})
	}
}

func TestToStatusUnauthorizedPublishes(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 4)
	defer unsub()

	err := toStatus(b, zap.NewNop(), "list chats", &disa.HTTPError{Status: 401, Body: "expired"})
	if grpcstatus.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v, want Unauthenticated", grpcstatus.Code(err))
	}
	select {
	case evt := <-ch:
		if evt.Kind != bus.KindSessionUnauthorized {
			t.Errorf("kind = %q", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no session.unauthorized event")
	}
}

func TestRequestOTPRejectedKeepsSessionQuiet(t *testing.T) {
	backend := disatest.New(t)
	backend.Respond(http.MethodPost, "/request-otp", http.StatusUnauthorized, `{"detail":"unknown user"}`)
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 4)
	defer unsub()

	svc := NewSessionService("main", nil, disa.NewClient(backend.URL, 5*time.Second), nil, b, nil, zap.NewNop())
	_, err := svc.RequestOTP(context.Background(), &rpc.RequestOTPRequest{Email: "ada@example.com"})

	st := grpcstatus.Convert(err)
	if st.Code() != codes.Unavailable || st.Message() != OTPFailedMessage {
		t.Fatalf("status = %v %q", st.Code(), st.Message())
	}
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %q", evt.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ada@example.com", "ada@example.com", false},
		{"  ada@example.com ", "ada@example.com", false},
		{"", "", true},
		{"ada", "", true},
		{"Ada <ada@example.com>", "", true},
	}
	for _, tt := range tests {
		got, err := normalizeEmail(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("normalizeEmail(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEventToRPC(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := eventToRPC(bus.Event{
		ID:        "e1",
		Kind:      bus.KindMessageSendFailed,
		Timestamp: ts,
		Payload:   bus.MessageRef{ChatID: "7", Error: "503"},
	})
	if got.ChatID != "7" || got.Error != "503" || got.OccurredAtUnixMs != ts.UnixMilli() {
		t.Errorf("event = %+v", got)
	}
}
