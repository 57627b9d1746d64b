package disa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const defaultOTPMessage = "OTP has been sent to your email"

// RequestOTP asks the backend to email a one-time code. It returns the
// backend's confirmation text, or a default one.
func (c *Client) RequestOTP(ctx context.Context, email string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	data, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/request-otp",
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOTPRequestFailed, err)
	}
	var resp OTPResponse
	if err := json.Unmarshal(data, &resp); err != nil || strings.TrimSpace(resp.Message) == "" {
		return defaultOTPMessage, nil
	}
	return resp.Message, nil
}

// SignIn exchanges email and OTP for a user record. A 401 yields an error
// matching ErrInvalidOTP; every other failure matches ErrSignInFailed.
func (c *Client) SignIn(ctx context.Context, email, otp string) (*SignInResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", email)
	form.Set("password", otp)
	form.Set("scope", "")
	form.Set("client_id", "string")
	form.Set("client_secret", "string")

	data, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/signin",
		Body:        []byte(form.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		if IsUnauthorized(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOTP, err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSignInFailed, err)
	}

	var resp SignInResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrSignInFailed, err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response has no access_token", ErrSignInFailed)
	}
	if resp.Email == "" {
		resp.Email = email
	}
	return &resp, nil
}

// ListChats returns the user's conversations. A body that is not an array
// yields an empty list; elements that cannot be decoded are skipped.
func (c *Client) ListChats(ctx context.Context, token string) ([]Chat, error) {
	data, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/allchats", Token: token})
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return decodeList[Chat](c.log, "/allchats", data), nil
}

// ListMessages returns a conversation's messages in backend order.
func (c *Client) ListMessages(ctx context.Context, token, chatID string) ([]Message, error) {
	path := chatPath(chatID, "messages")
	data, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return decodeList[Message](c.log, path, data), nil
}

// SendMessage posts a text message. The returned message is nil when the
// backend's response does not describe one.
func (c *Client) SendMessage(ctx context.Context, token, chatID, content string) (*Message, error) {
	body, err := json.Marshal(map[string]string{"content": content, "messageType": "text"})
	if err != nil {
		return nil, err
	}
	data, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        chatPath(chatID, "messages"),
		Token:       token,
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.MessageID == "" {
		return nil, nil
	}
	return &msg, nil
}

// ListChatUsers returns the members of a conversation.
func (c *Client) ListChatUsers(ctx context.Context, token, chatID string) ([]Member, error) {
	path := chatPath(chatID, "users")
	data, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token})
	if err != nil {
		return nil, fmt.Errorf("list chat users: %w", err)
	}
	return decodeList[Member](c.log, path, data), nil
}

// DeleteChat removes a conversation.
func (c *Client) DeleteChat(ctx context.Context, token, chatID string) error {
	if _, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: chatPath(chatID, ""), Token: token}); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// ReportChat flags a conversation for moderation.
func (c *Client) ReportChat(ctx context.Context, token, chatID string) error {
	body, err := json.Marshal(struct {
		ReportType string `json:"report_type"`
		ChatID     string `json:"chat_id"`
	}{"CHAT", chatID})
	if err != nil {
		return err
	}
	_, err = c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        chatPath(chatID, "report"),
		Token:       token,
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("report chat: %w", err)
	}
	return nil
}

// CreateChat creates a conversation from a multipart form.
func (c *Client) CreateChat(ctx context.Context, token string, nc NewChat) (*CreatedChat, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"name", nc.Name},
		{"description", nc.Description},
		{"welcome_message", nc.WelcomeMessage},
		{"templates_id", nc.TemplatesID},
	}
	for _, f := range fields {
		if f.value == "" && f.name != "name" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	data, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/chats",
		Token:       token,
		Body:        buf.Bytes(),
		ContentType: w.FormDataContentType(),
	})
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	var created CreatedChat
	if err := json.Unmarshal(data, &created); err != nil || created.ChatID == "" {
		return nil, ErrMissingChatID
	}
	return &created, nil
}

func chatPath(chatID, suffix string) string {
	p := "/chats/" + url.PathEscape(chatID)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func decodeList[T any](log *zap.Logger, path string, data []byte) []T {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("response is not a list", zap.String("path", path), zap.Error(err))
		return []T{}
	}
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			log.Warn("skipping malformed element", zap.String("path", path), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}
