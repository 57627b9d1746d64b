package disa

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// ID is an identifier the backend sends either as a JSON string or number.
type ID string

// UnmarshalJSON accepts "12", 12 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

func (id ID) String() string { return string(id) }

// Timestamp is a time field kept in its raw text form. Strings and numbers
// are preserved; null and any other JSON value decode to "" instead of
// failing the enclosing record.
type Timestamp string

// UnmarshalJSON never returns an error for well-formed JSON.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*ts = ""
	if len(data) == 0 {
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ts = Timestamp(s)
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*ts = Timestamp(n.String())
		}
	}
	return nil
}

// Time parses the raw value with ParseTime.
func (ts Timestamp) Time() (time.Time, bool) { return ParseTime(string(ts)) }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// ParseTime parses any timestamp layout the backend has been seen to emit.
// Values without a zone are taken as UTC. Bare numbers are Unix seconds, or
// milliseconds when 1e11 or larger.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	switch {
	case err != nil || !(n > 0):
		return time.Time{}, false
	case n < 1e11:
		sec := int64(n)
		return time.Unix(sec, int64((n-float64(sec))*1e9)).UTC(), true
	case n < 1e14:
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Time{}, false
}

// OTPResponse is the body of POST /request-otp.
type OTPResponse struct {
	Message string `json:"message"`
}

// SignInResponse is the user record returned by POST /signin.
type SignInResponse struct {
	ID             ID     `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Industry       string `json:"industry"`
	Specialization string `json:"specialization"`
	Checklist      string `json:"checklist"`
	ProfilePicURL  string `json:"profile_pic_url"`
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
}

// Chat is one element of GET /allchats.
type Chat struct {
	ChatID       ID        `json:"chat_id"`
	CreatorName  string    `json:"creator_name"`
	GroupIconURL string    `json:"group_icon_url"`
	Skills       string    `json:"skills"`
	IsCreator    bool      `json:"is_creator"`
	CreatedAt    Timestamp `json:"created_at"`
}

// Message is one element of GET /chats/{id}/messages.
type Message struct {
	MessageID  ID              `json:"message_id"`
	Message    string          `json:"message"`
	SentAt     Timestamp       `json:"sent_at"`
	SenderName string          `json:"sender_name"`
	SenderID   ID              `json:"sender_id"`
	Feedback   json.RawMessage `json:"feedback,omitempty"`
}

// Member is one element of GET /chats/{id}/users.
type Member struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	MemberStatus bool   `json:"member_status"`
	Blocked      bool   `json:"blocked"`
}

// NewChat is the multipart form of POST /chats. Empty optional fields are omitted.
type NewChat struct {
	Name           string
	Description    string
	WelcomeMessage string
	TemplatesID    string
}

// CreatedChat is the body of a successful POST /chats.
type CreatedChat struct {
	ChatID  ID     `json:"chat_id"`
	Message string `json:"message"`
}
