package daemon

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/matheus3301/disa/internal/api"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/config"
	"github.com/matheus3301/disa/internal/disatest"
	"github.com/matheus3301/disa/internal/rpc"
)

type harness struct {
	params  Params
	backend *disatest.Backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	// Use /tmp for short socket paths (104-char Unix socket limit on macOS).
	tmpDir, err := os.MkdirTemp("/tmp", "disa-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })
	t.Setenv("DISA_HOME", filepath.Join(tmpDir, "home"))

	backend := disatest.New(t)
	cfg := config.Default()
	cfg.APIURL = backend.URL
	cfg.RequestTimeout = config.Duration{Duration: 5 * time.Second}
	cfg.RequestsPerSecond = 0

	return &harness{
		params:  Params{Profile: "test", SocketPath: filepath.Join(tmpDir, "d.sock"), Config: cfg},
		backend: backend,
	}
}

func (h *harness) start(t *testing.T) (*fxtest.App, *grpc.ClientConn) {
	t.Helper()
	app := fxtest.New(t, Module(h.params))
	app.RequireStart()

	conn, err := grpc.NewClient(
		"unix://"+h.params.SocketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	return app, conn
}

func signIn(t *testing.T, conn *grpc.ClientConn) {
	t.Helper()
	resp, err := rpc.NewSessionClient(conn).SignIn(context.Background(), &rpc.SignInRequest{
		Email: "ada@example.com",
		OTP:   disatest.ValidOTP,
	})
	if err != nil {
		t.Fatalf("SignIn error = %v", err)
	}
	if resp.Status != rpc.StatusAuthenticated {
		t.Fatalf("status = %q, want AUTHENTICATED", resp.Status)
	}
}

func TestDaemonLifecycle(t *testing.T) {
	h := newHarness(t)
	app, conn := h.start(t)
	defer app.RequireStop()
	defer func() { _ = conn.Close() }()
	ctx := context.Background()

	session := rpc.NewSessionClient(conn)
	st, err := session.GetStatus(ctx, &rpc.GetStatusRequest{})
	if err != nil {
		t.Fatalf("GetStatus error = %v", err)
	}
	if st.Profile != "test" || st.Status != rpc.StatusAnonymous {
		t.Errorf("status = %+v, want test/ANONYMOUS", st)
	}
	if st.APIURL != h.backend.URL {
		t.Errorf("api url = %q, want %q", st.APIURL, h.backend.URL)
	}

	chatClient := rpc.NewChatClient(conn)
	_, err = chatClient.ListChats(ctx, &rpc.ListChatsRequest{})
	if grpcstatus.Code(err) != codes.FailedPrecondition {
		t.Errorf("ListChats before sign-in code = %v, want FailedPrecondition", grpcstatus.Code(err))
	}
	if n := h.backend.CallCount(http.MethodGet, "/allchats"); n != 0 {
		t.Errorf("backend saw %d list calls before sign-in", n)
	}

	otp, err := session.RequestOTP(ctx, &rpc.RequestOTPRequest{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("RequestOTP error = %v", err)
	}
	if otp.Message != "OTP sent to ada@example.com" {
		t.Errorf("otp message = %q", otp.Message)
	}

	_, err = session.SignIn(ctx, &rpc.SignInRequest{Email: "ada@example.com", OTP: "999999"})
	if grpcstatus.Code(err) != codes.Unauthenticated {
		t.Fatalf("SignIn with bad otp code = %v, want Unauthenticated", grpcstatus.Code(err))
	}
	if msg := grpcstatus.Convert(err).Message(); msg != api.InvalidOTPMessage {
		t.Errorf("message = %q, want %q", msg, api.InvalidOTPMessage)
	}

	signIn(t, conn)

	h.backend.AddChat(disatest.Chat{ChatID: 1, CreatorName: "Nurse Joy", Skills: "triage"})
	h.backend.AddChat(disatest.Chat{ChatID: "2", CreatorName: "Dr. Who"})
	h.backend.AddMessage("1", disatest.Message{MessageID: 10, Message: "hello", SenderName: "Nurse Joy", SentAt: "not-a-date"})

	list, err := chatClient.ListChats(ctx, &rpc.ListChatsRequest{})
	if err != nil {
		t.Fatalf("ListChats error = %v", err)
	}
	if len(list.Chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(list.Chats))
	}
	if list.Chats[1].LastMessagePreview != "No skills defined" {
		t.Errorf("preview = %q, want fallback", list.Chats[1].LastMessagePreview)
	}

	filtered, err := chatClient.ListChats(ctx, &rpc.ListChatsRequest{Filter: "TRIAGE"})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered.Chats) != 1 || filtered.Chats[0].ID != "1" {
		t.Errorf("filtered = %+v, want chat 1", filtered.Chats)
	}
	if n := h.backend.CallCount(http.MethodGet, "/allchats"); n != 1 {
		t.Errorf("allchats calls = %d, want 1 (second list served from cache)", n)
	}

	msgClient := rpc.NewMessageClient(conn)
	msgs, err := msgClient.ListMessages(ctx, &rpc.ListMessagesRequest{ChatID: "1"})
	if err != nil {
		t.Fatalf("ListMessages error = %v", err)
	}
	if len(msgs.Messages) != 1 || msgs.Messages[0].SentAtUnixMs == 0 {
		t.Errorf("messages = %+v", msgs.Messages)
	}

	sent, err := msgClient.SendMessage(ctx, &rpc.SendMessageRequest{ChatID: "1", Body: "  on my way "})
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}
	if sent.Message == nil || sent.Message.Body != "on my way" {
		t.Errorf("sent = %+v", sent.Message)
	}

	msgs, err = msgClient.ListMessages(ctx, &rpc.ListMessagesRequest{ChatID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs.Messages) != 2 || msgs.Messages[1].Body != "on my way" {
		t.Errorf("after send messages = %+v, want the new message last", msgs.Messages)
	}

	tr, err := chatClient.GetTranscript(ctx, &rpc.GetTranscriptRequest{ChatID: "1", Name: "Nurse Joy"})
	if err != nil {
		t.Fatalf("GetTranscript error = %v", err)
	}
	if tr.Title != "Chat with Nurse Joy" {
		t.Errorf("title = %q", tr.Title)
	}
	if tr.Text != "Nurse Joy: hello\nada@example.com: on my way" {
		t.Errorf("transcript = %q", tr.Text)
	}

	if _, err := chatClient.DeleteChat(ctx, &rpc.ChatRequest{ChatID: "2"}); err != nil {
		t.Fatalf("DeleteChat error = %v", err)
	}
	list, err = chatClient.ListChats(ctx, &rpc.ListChatsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Chats) != 1 {
		t.Errorf("after delete got %d chats, want 1", len(list.Chats))
	}

	_, err = chatClient.DeleteChat(ctx, &rpc.ChatRequest{ChatID: "404"})
	if grpcstatus.Code(err) != codes.Aborted {
		t.Errorf("delete missing chat code = %v, want Aborted", grpcstatus.Code(err))
	}
}

func TestCredentialsSurviveRestart(t *testing.T) {
	h := newHarness(t)

	app, conn := h.start(t)
	signIn(t, conn)
	_ = conn.Close()
	app.RequireStop()

	app, conn = h.start(t)
	defer app.RequireStop()
	defer func() { _ = conn.Close() }()

	st, err := rpc.NewSessionClient(conn).GetStatus(context.Background(), &rpc.GetStatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != rpc.StatusAuthenticated {
		t.Fatalf("status after restart = %q, want AUTHENTICATED", st.Status)
	}
	if st.User == nil || st.User.ID != "17" || st.User.Industry != "Health" {
		t.Errorf("user = %+v", st.User)
	}

	if _, err := rpc.NewSessionClient(conn).Logout(context.Background(), &rpc.LogoutRequest{}); err != nil {
		t.Fatal(err)
	}
	_, err = rpc.NewChatClient(conn).ListChats(context.Background(), &rpc.ListChatsRequest{})
	if grpcstatus.Code(err) != codes.FailedPrecondition {
		t.Errorf("ListChats after logout code = %v, want FailedPrecondition", grpcstatus.Code(err))
	}
}

func TestUnauthorizedKeepsSessionAndEmitsEvent(t *testing.T) {
	h := newHarness(t)
	app, conn := h.start(t)
	defer app.RequireStop()
	defer func() { _ = conn.Close() }()

	signIn(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	session := rpc.NewSessionClient(conn)
	events, err := session.WatchEvents(ctx, &rpc.WatchEventsRequest{Prefix: "session."})
	if err != nil {
		t.Fatal(err)
	}
	// Give the server time to subscribe before the event fires.
	time.Sleep(50 * time.Millisecond)

	h.backend.Respond(http.MethodGet, "/allchats", http.StatusUnauthorized, `{"detail":"expired"}`)
	_, err = rpc.NewChatClient(conn).ListChats(ctx, &rpc.ListChatsRequest{})
	if grpcstatus.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v, want Unauthenticated", grpcstatus.Code(err))
	}

	evt, err := events.Recv()
	if err != nil {
		t.Fatalf("Recv error = %v", err)
	}
	if evt.Kind != bus.KindSessionUnauthorized {
		t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindSessionUnauthorized)
	}

	st, err := session.GetStatus(ctx, &rpc.GetStatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != rpc.StatusAuthenticated {
		t.Errorf("status = %q, want session kept after 401", st.Status)
	}
}

// TestNewServerUsesParamsSocket guards the fx graph: NewServer must take
// Params (not a bare string) and honor the socket override.
func TestNewServerUsesParamsSocket(t *testing.T) {
	h := newHarness(t)
	srv, err := NewServer(h.params, zap.NewNop(),
		api.NewSessionService("test", nil, nil, nil, nil, nil, nil),
		api.NewChatService(nil, nil, nil, nil, nil),
		api.NewMessageService(nil, nil, nil, nil),
	)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.SocketPath() != h.params.SocketPath {
		t.Errorf("socket = %q, want %q", srv.SocketPath(), h.params.SocketPath)
	}
	info, err := os.Stat(h.params.SocketPath)
	if err != nil {
		t.Fatalf("socket not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket permission = %o, want 0600", perm)
	}
	srv.Stop(context.Background())
	if _, err := os.Stat(h.params.SocketPath); !os.IsNotExist(err) {
		t.Error("socket still present after Stop")
	}
}

func TestGetMetricsExposesCacheAndBus(t *testing.T) {
	h := newHarness(t)
	app, conn := h.start(t)
	defer app.RequireStop()
	defer func() { _ = conn.Close() }()
	ctx := context.Background()

	signIn(t, conn)
	if _, err := rpc.NewChatClient(conn).ListChats(ctx, &rpc.ListChatsRequest{}); err != nil {
		t.Fatalf("ListChats error = %v", err)
	}

	resp, err := rpc.NewSessionClient(conn).GetMetrics(ctx, &rpc.GetMetricsRequest{})
	if err != nil {
		t.Fatalf("GetMetrics error = %v", err)
	}
	for _, want := range []string{
		`disa_query_lookups_total{family="chats"`,
		"disa_bus_dropped_events_total",
		"go_goroutines",
	} {
		if !strings.Contains(resp.Text, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
