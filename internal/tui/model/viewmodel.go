package model

import (
	"context"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/matheus3301/disa/internal/chats"
	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/transcript"
	"github.com/matheus3301/disa/internal/tui/ui"
)

// SessionAPI is the session half of the daemon client.
type SessionAPI interface {
	GetStatus(ctx context.Context, in *rpc.GetStatusRequest, opts ...grpc.CallOption) (*rpc.GetStatusResponse, error)
	RequestOTP(ctx context.Context, in *rpc.RequestOTPRequest, opts ...grpc.CallOption) (*rpc.RequestOTPResponse, error)
	SignIn(ctx context.Context, in *rpc.SignInRequest, opts ...grpc.CallOption) (*rpc.SignInResponse, error)
	Logout(ctx context.Context, in *rpc.LogoutRequest, opts ...grpc.CallOption) (*rpc.LogoutResponse, error)
	RotateToken(ctx context.Context, in *rpc.RotateTokenRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
}

// ChatAPI is the conversation half of the daemon client.
type ChatAPI interface {
	ListChats(ctx context.Context, in *rpc.ListChatsRequest, opts ...grpc.CallOption) (*rpc.ListChatsResponse, error)
	DeleteChat(ctx context.Context, in *rpc.ChatRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	ReportChat(ctx context.Context, in *rpc.ChatRequest, opts ...grpc.CallOption) (*rpc.Empty, error)
	ListMembers(ctx context.Context, in *rpc.ChatRequest, opts ...grpc.CallOption) (*rpc.ListMembersResponse, error)
	CreateChat(ctx context.Context, in *rpc.CreateChatRequest, opts ...grpc.CallOption) (*rpc.CreateChatResponse, error)
	GetTranscript(ctx context.Context, in *rpc.GetTranscriptRequest, opts ...grpc.CallOption) (*rpc.GetTranscriptResponse, error)
}

// MessageAPI is the thread half of the daemon client.
type MessageAPI interface {
	ListMessages(ctx context.Context, in *rpc.ListMessagesRequest, opts ...grpc.CallOption) (*rpc.ListMessagesResponse, error)
	SendMessage(ctx context.Context, in *rpc.SendMessageRequest, opts ...grpc.CallOption) (*rpc.SendMessageResponse, error)
}

// ViewModel caches what the pages render. Failed loads keep the previous
// data so an unreachable backend never blanks the screen.
type ViewModel struct {
	mu sync.RWMutex

	session SessionAPI
	chat    ChatAPI
	message MessageAPI

	status   *rpc.GetStatusResponse
	chats    []rpc.Chat
	messages map[string][]rpc.Message
	members  map[string][]rpc.Member
	drafts   map[string]*messages.Draft
	active   string
	filter   string

	Flash *ui.FlashModel
}

// NewViewModel creates a view model over the daemon clients.
func NewViewModel(s SessionAPI, c ChatAPI, m MessageAPI) *ViewModel {
	return &ViewModel{
		session:  s,
		chat:     c,
		message:  m,
		messages: make(map[string][]rpc.Message),
		members:  make(map[string][]rpc.Member),
		drafts:   make(map[string]*messages.Draft),
		Flash:    ui.NewFlashModel(),
	}
}

// LoadStatus fetches the daemon's session status.
func (vm *ViewModel) LoadStatus(ctx context.Context) (*rpc.GetStatusResponse, error) {
	resp, err := vm.session.GetStatus(ctx, &rpc.GetStatusRequest{})
	if err != nil {
		return nil, err
	}
	vm.mu.Lock()
	vm.status = resp
	vm.mu.Unlock()
	return resp, nil
}

// Status returns the last loaded status, or nil.
func (vm *ViewModel) Status() *rpc.GetStatusResponse {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// Authenticated reports whether the last status was AUTHENTICATED.
func (vm *ViewModel) Authenticated() bool {
	st := vm.Status()
	return st != nil && st.Status == rpc.StatusAuthenticated
}

// RequestOTP asks the backend to email a code and returns its message.
func (vm *ViewModel) RequestOTP(ctx context.Context, email string) (string, error) {
	resp, err := vm.session.RequestOTP(ctx, &rpc.RequestOTPRequest{Email: email})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SignIn exchanges email and code for a session.
func (vm *ViewModel) SignIn(ctx context.Context, email, otp string) error {
	if _, err := vm.session.SignIn(ctx, &rpc.SignInRequest{Email: email, OTP: otp}); err != nil {
		return err
	}
	_, err := vm.LoadStatus(ctx)
	return err
}

// Logout ends the session and forgets every cached view.
func (vm *ViewModel) Logout(ctx context.Context) error {
	if _, err := vm.session.Logout(ctx, &rpc.LogoutRequest{}); err != nil {
		return err
	}
	vm.mu.Lock()
	vm.chats = nil
	vm.messages = make(map[string][]rpc.Message)
	vm.members = make(map[string][]rpc.Member)
	vm.drafts = make(map[string]*messages.Draft)
	vm.active = ""
	vm.mu.Unlock()
	_, err := vm.LoadStatus(ctx)
	return err
}

// RotateToken replaces the session token.
func (vm *ViewModel) RotateToken(ctx context.Context, token string) error {
	_, err := vm.session.RotateToken(ctx, &rpc.RotateTokenRequest{Token: token})
	return err
}

// LoadChats refreshes the conversation list. refresh forces a refetch.
func (vm *ViewModel) LoadChats(ctx context.Context, refresh bool) error {
	resp, err := vm.chat.ListChats(ctx, &rpc.ListChatsRequest{Refresh: refresh})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.chats = resp.Chats
	vm.mu.Unlock()
	return nil
}

// SetFilter sets the conversation search term.
func (vm *ViewModel) SetFilter(term string) {
	vm.mu.Lock()
	vm.filter = term
	vm.mu.Unlock()
}

// Filter returns the conversation search term.
func (vm *ViewModel) Filter() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filter
}

// Chats returns the conversations matching the filter, in backend order.
func (vm *ViewModel) Chats() []rpc.Chat {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]rpc.Chat, 0, len(vm.chats))
	for _, c := range vm.chats {
		if chats.Matches(chats.Conversation{DisplayName: c.DisplayName, LastMessagePreview: c.LastMessagePreview}, vm.filter) {
			out = append(out, c)
		}
	}
	return out
}

// TotalChats counts conversations ignoring the filter.
func (vm *ViewModel) TotalChats() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.chats)
}

// Chat looks up a conversation by id.
func (vm *ViewModel) Chat(id string) (rpc.Chat, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, c := range vm.chats {
		if c.ID == id {
			return c, true
		}
	}
	return rpc.Chat{}, false
}

// FindChat returns the first conversation whose name contains term.
func (vm *ViewModel) FindChat(term string) (rpc.Chat, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, c := range vm.chats {
		if term != "" && strings.Contains(strings.ToLower(c.DisplayName), term) {
			return c, true
		}
	}
	return rpc.Chat{}, false
}

// Select makes id the active conversation. An empty id selects the first
// visible conversation; the chosen id is returned ("" when there is none).
func (vm *ViewModel) Select(id string) string {
	if id == "" {
		if visible := vm.Chats(); len(visible) > 0 {
			id = visible[0].ID
		}
	}
	vm.mu.Lock()
	vm.active = id
	vm.mu.Unlock()
	return id
}

// Active returns the active conversation id.
func (vm *ViewModel) Active() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// LoadMessages refreshes the thread of chatID.
func (vm *ViewModel) LoadMessages(ctx context.Context, chatID string, refresh bool) error {
	resp, err := vm.message.ListMessages(ctx, &rpc.ListMessagesRequest{ChatID: chatID, Refresh: refresh})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.messages[chatID] = resp.Messages
	vm.mu.Unlock()
	return nil
}

// Messages returns the cached thread of chatID.
func (vm *ViewModel) Messages(chatID string) []rpc.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messages[chatID]
}

// Draft returns the compose box of chatID.
func (vm *ViewModel) Draft(chatID string) *messages.Draft {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	d, ok := vm.drafts[chatID]
	if !ok {
		d = &messages.Draft{}
		vm.drafts[chatID] = d
	}
	return d
}

// SendDraft sends the draft of chatID. The draft is cleared only when the
// daemon accepted the message; the thread is reloaded afterwards.
func (vm *ViewModel) SendDraft(ctx context.Context, chatID string) error {
	err := messages.SendDraft(ctx, vm.Draft(chatID), func(ctx context.Context, body string) error {
		_, err := vm.message.SendMessage(ctx, &rpc.SendMessageRequest{ChatID: chatID, Body: body})
		return err
	})
	if err != nil {
		return err
	}
	return vm.LoadMessages(ctx, chatID, false)
}

// LoadMembers refreshes the participants of chatID.
func (vm *ViewModel) LoadMembers(ctx context.Context, chatID string) error {
	resp, err := vm.chat.ListMembers(ctx, &rpc.ChatRequest{ChatID: chatID})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.members[chatID] = resp.Members
	vm.mu.Unlock()
	return nil
}

// Members returns the cached participants of chatID.
func (vm *ViewModel) Members(chatID string) []rpc.Member {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.members[chatID]
}

// Delete removes chatID and drops it from every local view.
func (vm *ViewModel) Delete(ctx context.Context, chatID string) error {
	if _, err := vm.chat.DeleteChat(ctx, &rpc.ChatRequest{ChatID: chatID}); err != nil {
		return err
	}
	vm.mu.Lock()
	for i, c := range vm.chats {
		if c.ID == chatID {
			vm.chats = append(vm.chats[:i:i], vm.chats[i+1:]...)
			break
		}
	}
	delete(vm.messages, chatID)
	delete(vm.members, chatID)
	delete(vm.drafts, chatID)
	if vm.active == chatID {
		vm.active = ""
	}
	vm.mu.Unlock()
	return vm.LoadChats(ctx, false)
}

// Report flags chatID.
func (vm *ViewModel) Report(ctx context.Context, chatID string) error {
	_, err := vm.chat.ReportChat(ctx, &rpc.ChatRequest{ChatID: chatID})
	return err
}

// Create opens a new conversation and returns its id.
func (vm *ViewModel) Create(ctx context.Context, name, description string) (string, error) {
	resp, err := vm.chat.CreateChat(ctx, &rpc.CreateChatRequest{Name: name, Description: description})
	if err != nil {
		return "", err
	}
	if err := vm.LoadChats(ctx, false); err != nil {
		return resp.ChatID, err
	}
	return resp.ChatID, nil
}

// Copy puts the transcript of chatID on cb.
func (vm *ViewModel) Copy(ctx context.Context, chatID string, cb transcript.Clipboard) (transcript.Result, error) {
	tr, err := vm.transcript(ctx, chatID)
	if err != nil {
		return transcript.Result{}, err
	}
	return transcript.Copy(tr.Text, cb)
}

// Share hands the transcript of chatID to sh, falling back to cb.
func (vm *ViewModel) Share(ctx context.Context, chatID string, sh transcript.Sharer, cb transcript.Clipboard) (transcript.Result, error) {
	tr, err := vm.transcript(ctx, chatID)
	if err != nil {
		return transcript.Result{}, err
	}
	return transcript.Share(tr.Title, tr.Text, sh, cb)
}

func (vm *ViewModel) transcript(ctx context.Context, chatID string) (*rpc.GetTranscriptResponse, error) {
	c, _ := vm.Chat(chatID)
	return vm.chat.GetTranscript(ctx, &rpc.GetTranscriptRequest{ChatID: chatID, Name: c.DisplayName})
}

// Uptime returns the daemon uptime of the last status.
func (vm *ViewModel) Uptime() time.Duration {
	st := vm.Status()
	if st == nil {
		return 0
	}
	return time.Duration(st.UptimeMs) * time.Millisecond
}
