package model

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"

	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/transcript"
)

type fakeDaemon struct {
	status   string
	chats    []rpc.Chat
	thread   []rpc.Message
	listErr  error
	sendErr  error
	sent     []string
	deleted  []string
	reported []string
	share    error
}

func (f *fakeDaemon) GetStatus(context.Context, *rpc.GetStatusRequest, ...grpc.CallOption) (*rpc.GetStatusResponse, error) {
	return &rpc.GetStatusResponse{Profile: "default", Status: f.status, UptimeMs: 1500}, nil
}

func (f *fakeDaemon) RequestOTP(_ context.Context, in *rpc.RequestOTPRequest, _ ...grpc.CallOption) (*rpc.RequestOTPResponse, error) {
	return &rpc.RequestOTPResponse{Message: "OTP sent to " + in.Email}, nil
}

func (f *fakeDaemon) SignIn(context.Context, *rpc.SignInRequest, ...grpc.CallOption) (*rpc.SignInResponse, error) {
	f.status = rpc.StatusAuthenticated
	return &rpc.SignInResponse{Status: f.status}, nil
}

func (f *fakeDaemon) Logout(context.Context, *rpc.LogoutRequest, ...grpc.CallOption) (*rpc.LogoutResponse, error) {
	f.status = rpc.StatusAnonymous
	return &rpc.LogoutResponse{Status: f.status}, nil
}

func (f *fakeDaemon) RotateToken(context.Context, *rpc.RotateTokenRequest, ...grpc.CallOption) (*rpc.Empty, error) {
	return &rpc.Empty{}, nil
}

func (f *fakeDaemon) ListChats(context.Context, *rpc.ListChatsRequest, ...grpc.CallOption) (*rpc.ListChatsResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &rpc.ListChatsResponse{Chats: append([]rpc.Chat(nil), f.chats...)}, nil
}

func (f *fakeDaemon) DeleteChat(_ context.Context, in *rpc.ChatRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.deleted = append(f.deleted, in.ChatID)
	for i, c := range f.chats {
		if c.ID == in.ChatID {
			f.chats = append(f.chats[:i:i], f.chats[i+1:]...)
			break
		}
	}
	return &rpc.Empty{}, nil
}

func (f *fakeDaemon) ReportChat(_ context.Context, in *rpc.ChatRequest, _ ...grpc.CallOption) (*rpc.Empty, error) {
	f.reported = append(f.reported, in.ChatID)
	return &rpc.Empty{}, nil
}

func (f *fakeDaemon) ListMembers(context.Context, *rpc.ChatRequest, ...grpc.CallOption) (*rpc.ListMembersResponse, error) {
	return &rpc.ListMembersResponse{Members: []rpc.Member{{ID: "1", Name: "Ada", IsMember: true}}}, nil
}

func (f *fakeDaemon) CreateChat(_ context.Context, in *rpc.CreateChatRequest, _ ...grpc.CallOption) (*rpc.CreateChatResponse, error) {
	f.chats = append(f.chats, rpc.Chat{ID: "new", DisplayName: in.Name})
	return &rpc.CreateChatResponse{ChatID: "new"}, nil
}

func (f *fakeDaemon) GetTranscript(_ context.Context, in *rpc.GetTranscriptRequest, _ ...grpc.CallOption) (*rpc.GetTranscriptResponse, error) {
	return &rpc.GetTranscriptResponse{Title: "Chat with " + in.Name, Text: "Ada: hi"}, nil
}

func (f *fakeDaemon) ListMessages(context.Context, *rpc.ListMessagesRequest, ...grpc.CallOption) (*rpc.ListMessagesResponse, error) {
	return &rpc.ListMessagesResponse{Messages: append([]rpc.Message(nil), f.thread...)}, nil
}

func (f *fakeDaemon) SendMessage(_ context.Context, in *rpc.SendMessageRequest, _ ...grpc.CallOption) (*rpc.SendMessageResponse, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, in.Body)
	m := rpc.Message{ID: "m", ChatID: in.ChatID, Body: in.Body}
	f.thread = append(f.thread, m)
	return &rpc.SendMessageResponse{Message: &m}, nil
}

type recordClipboard struct{ text string }

func (c *recordClipboard) Copy(text string) error {
	c.text = text
	return nil
}

type failingSharer struct{}

func (failingSharer) Share(string, string) (string, error) { return "", errors.New("no share target") }

func newTestModel() (*ViewModel, *fakeDaemon) {
	f := &fakeDaemon{
		status: rpc.StatusAuthenticated,
		chats: []rpc.Chat{
			{ID: "a", DisplayName: "Nurse Joy", LastMessagePreview: "triage"},
			{ID: "b", DisplayName: "Dr. Brock", LastMessagePreview: "surgery"},
		},
	}
	return NewViewModel(f, f, f), f
}

func TestLoadChatsKeepsPreviousOnError(t *testing.T) {
	vm, f := newTestModel()
	ctx := context.Background()
	if err := vm.LoadChats(ctx, false); err != nil {
		t.Fatal(err)
	}
	f.listErr = errors.New("unreachable")
	if err := vm.LoadChats(ctx, true); err == nil {
		t.Fatal("LoadChats() expected error")
	}
	if got := len(vm.Chats()); got != 2 {
		t.Errorf("Chats() = %d entries, want previous 2", got)
	}
}

func TestFilterAndSelect(t *testing.T) {
	vm, _ := newTestModel()
	if err := vm.LoadChats(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	vm.SetFilter("SURG")
	got := vm.Chats()
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("filtered = %+v, want only b", got)
	}
	if id := vm.Select(""); id != "b" {
		t.Errorf("Select(\"\") = %q, want first visible b", id)
	}
	if vm.TotalChats() != 2 {
		t.Errorf("TotalChats() = %d, want 2", vm.TotalChats())
	}

	vm.SetFilter("")
	if c, ok := vm.FindChat("joy"); !ok || c.ID != "a" {
		t.Errorf("FindChat(joy) = %+v, %v", c, ok)
	}
}

func TestSendDraftClearsOnlyOnSuccess(t *testing.T) {
	vm, f := newTestModel()
	ctx := context.Background()

	vm.Draft("a").Set("hello")
	f.sendErr = errors.New("boom")
	if err := vm.SendDraft(ctx, "a"); err == nil {
		t.Fatal("SendDraft() expected error")
	}
	if vm.Draft("a").Text() != "hello" {
		t.Errorf("draft = %q, want kept", vm.Draft("a").Text())
	}

	f.sendErr = nil
	if err := vm.SendDraft(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if vm.Draft("a").Text() != "" {
		t.Errorf("draft = %q, want cleared", vm.Draft("a").Text())
	}
	if len(vm.Messages("a")) != 1 {
		t.Errorf("thread not reloaded: %+v", vm.Messages("a"))
	}

	if err := vm.SendDraft(ctx, "a"); !errors.Is(err, messages.ErrEmptyMessage) {
		t.Errorf("blank SendDraft() = %v, want ErrEmptyMessage", err)
	}
}

func TestDeleteDropsLocalState(t *testing.T) {
	vm, f := newTestModel()
	ctx := context.Background()
	if err := vm.LoadChats(ctx, false); err != nil {
		t.Fatal(err)
	}
	vm.Select("a")
	vm.Draft("a").Set("unsent")

	if err := vm.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if len(f.deleted) != 1 || f.deleted[0] != "a" {
		t.Errorf("deleted = %v", f.deleted)
	}
	if _, ok := vm.Chat("a"); ok {
		t.Error("chat a still listed")
	}
	if vm.Active() != "" {
		t.Errorf("Active() = %q, want cleared", vm.Active())
	}
	if vm.Draft("a").Text() != "" {
		t.Error("draft of deleted chat survived")
	}
}

func TestShareFallsBackToClipboard(t *testing.T) {
	vm, _ := newTestModel()
	ctx := context.Background()
	if err := vm.LoadChats(ctx, false); err != nil {
		t.Fatal(err)
	}

	cb := &recordClipboard{}
	res, err := vm.Share(ctx, "a", failingSharer{}, cb)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != transcript.OutcomeSharedViaFallback {
		t.Errorf("Outcome = %v, want fallback", res.Outcome)
	}
	if cb.text != "Ada: hi" {
		t.Errorf("clipboard = %q", cb.text)
	}
}

func TestLogoutForgetsState(t *testing.T) {
	vm, _ := newTestModel()
	ctx := context.Background()
	if err := vm.LoadChats(ctx, false); err != nil {
		t.Fatal(err)
	}
	if err := vm.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if vm.Authenticated() {
		t.Error("Authenticated() = true after logout")
	}
	if vm.TotalChats() != 0 {
		t.Errorf("TotalChats() = %d after logout", vm.TotalChats())
	}
}
