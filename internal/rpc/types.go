package rpc

// Session status values reported by GetStatus.
const (
	StatusUnknown       = "UNKNOWN"
	StatusAuthenticated = "AUTHENTICATED"
	StatusAnonymous     = "ANONYMOUS"
)

// Empty is the response of calls that only report success.
type Empty struct{}

// User is the signed-in user. The token is never sent to clients.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	Industry       string `json:"industry,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Checklist      string `json:"checklist,omitempty"`
	ProfilePicURL  string `json:"profile_pic_url,omitempty"`
	IssuedAtUnixMs int64  `json:"issued_at_unix_ms,omitempty"`
}

type GetStatusRequest struct{}

type GetStatusResponse struct {
	Profile  string `json:"profile"`
	Status   string `json:"status"`
	User     *User  `json:"user,omitempty"`
	APIURL   string `json:"api_url"`
	UptimeMs int64  `json:"uptime_ms"`
}

type RequestOTPRequest struct {
	Email string `json:"email"`
}

type RequestOTPResponse struct {
	Message string `json:"message"`
}

type SignInRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type SignInResponse struct {
	Status string `json:"status"`
	User   *User  `json:"user,omitempty"`
}

type LogoutRequest struct{}

type LogoutResponse struct {
	Status string `json:"status"`
}

type RotateTokenRequest struct {
	Token string `json:"token"`
}

// WatchEventsRequest selects events by kind prefix ("session.", "chats.").
// An empty prefix receives everything.
type WatchEventsRequest struct {
	Prefix string `json:"prefix,omitempty"`
}

// Event is a daemon bus event flattened for the wire.
type Event struct {
	ID               string `json:"id"`
	Kind             string `json:"kind"`
	OccurredAtUnixMs int64  `json:"occurred_at_unix_ms"`
	ChatID           string `json:"chat_id,omitempty"`
	MessageID        string `json:"message_id,omitempty"`
	Name             string `json:"name,omitempty"`
	From             string `json:"from,omitempty"`
	To               string `json:"to,omitempty"`
	Error            string `json:"error,omitempty"`
}

type GetMetricsRequest struct{}

// GetMetricsResponse carries the daemon's metrics in the Prometheus text format.
type GetMetricsResponse struct {
	Text string `json:"text"`
}

// Chat is one conversation of the list.
type Chat struct {
	ID                 string `json:"id"`
	DisplayName        string `json:"display_name"`
	AvatarURL          string `json:"avatar_url"`
	LastMessagePreview string `json:"last_message_preview"`
	CreatedAtUnixMs    int64  `json:"created_at_unix_ms,omitempty"`
	IsCreator          bool   `json:"is_creator"`
}

// ListChatsRequest filters the list locally. Refresh marks the cached list
// stale before reading it.
type ListChatsRequest struct {
	Filter  string `json:"filter,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

type ListChatsResponse struct {
	Chats []Chat `json:"chats"`
}

type ChatRequest struct {
	ChatID string `json:"chat_id"`
}

type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
	Blocked  bool   `json:"blocked"`
}

type ListMembersResponse struct {
	Members []Member `json:"members"`
}

type CreateChatRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateChatResponse struct {
	ChatID string `json:"chat_id"`
}

// GetTranscriptRequest names the conversation so the response can carry a title.
type GetTranscriptRequest struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name,omitempty"`
}

type GetTranscriptResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Message is one entry of a thread, in backend order.
type Message struct {
	ID           string `json:"id"`
	ChatID       string `json:"chat_id"`
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	Body         string `json:"body"`
	SentAtUnixMs int64  `json:"sent_at_unix_ms"`
}

type ListMessagesRequest struct {
	ChatID  string `json:"chat_id"`
	Refresh bool   `json:"refresh,omitempty"`
}

type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type SendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Body   string `json:"body"`
}

type SendMessageResponse struct {
	Message *Message `json:"message,omitempty"`
}
