// Package disatest provides an in-process fake of the Disa backend for tests.
package disatest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// ValidOTP is the only code SignIn accepts.
const ValidOTP = "123456"

// Call is one request the backend received.
type Call struct {
	Method      string
	Path        string
	Auth        string
	ContentType string
	Body        []byte
	Form        url.Values
}

// Chat, Message and Member mirror the backend's JSON.
type Chat struct {
	ChatID       any    `json:"chat_id"`
	CreatorName  string `json:"creator_name,omitempty"`
	GroupIconURL string `json:"group_icon_url,omitempty"`
	Skills       string `json:"skills,omitempty"`
	IsCreator    bool   `json:"is_creator"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type Message struct {
	MessageID  any    `json:"message_id"`
	Message    string `json:"message,omitempty"`
	SentAt     string `json:"sent_at,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
	SenderID   any    `json:"sender_id"`
}

type Member struct {
	ID           any    `json:"id"`
	Name         string `json:"name"`
	MemberStatus bool   `json:"member_status"`
	Blocked      bool   `json:"blocked"`
}

type override struct {
	status int
	body   string
}

// Backend is a stateful fake that serves every Disa endpoint.
type Backend struct {
	URL string

	srv *httptest.Server

	mu        sync.Mutex
	calls     []Call
	tokens    map[string]string
	chats     []Chat
	messages  map[string][]Message
	members   map[string][]Member
	overrides map[string]override
	gates     map[string]chan struct{}
	nextID    int
}

// New starts a backend; it is closed by t.Cleanup when t is non-nil.
func New(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{
		tokens:    make(map[string]string),
		messages:  make(map[string][]Message),
		members:   make(map[string][]Member),
		overrides: make(map[string]override),
		gates:     make(map[string]chan struct{}),
		nextID:    1000,
	}
	b.srv = httptest.NewServer(b.routes())
	b.URL = b.srv.URL
	if t != nil {
		t.Cleanup(b.Close)
	}
	return b
}

// Close stops the server and releases any gated requests.
func (b *Backend) Close() {
	b.mu.Lock()
	for key, g := range b.gates {
		close(g)
		delete(b.gates, key)
	}
	b.mu.Unlock()
	b.srv.Close()
}

func (b *Backend) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(b.record, b.gate, b.scripted)

	e.POST("/request-otp", b.requestOTP)
	e.POST("/signin", b.signIn)

	authed := e.Group("", b.requireToken)
	authed.GET("/allchats", b.listChats)
	authed.POST("/chats", b.createChat)
	authed.DELETE("/chats/:id", b.deleteChat)
	authed.GET("/chats/:id/messages", b.listMessages)
	authed.POST("/chats/:id/messages", b.sendMessage)
	authed.GET("/chats/:id/users", b.listMembers)
	authed.POST("/chats/:id/report", b.report)
	return e
}

// IssueToken registers token as valid for email and returns it.
func (b *Backend) IssueToken(email, token string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = email
	return token
}

// AddChat appends a conversation to /allchats.
func (b *Backend) AddChat(c Chat) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chats = append(b.chats, c)
}

// AddMessage appends a message to a conversation.
func (b *Backend) AddMessage(chatID string, m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[chatID] = append(b.messages[chatID], m)
}

// AddMember appends a member to a conversation.
func (b *Backend) AddMember(chatID string, m Member) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.members[chatID] = append(b.members[chatID], m)
}

// Respond makes every request to method+path answer with status and raw body.
func (b *Backend) Respond(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[method+" "+path] = override{status: status, body: body}
}

// Reset removes a Respond override.
func (b *Backend) Reset(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.overrides, method+" "+path)
}

// Hold blocks requests to method+path until the returned func is called.
func (b *Backend) Hold(method, path string) (release func()) {
	g := make(chan struct{})
	key := method + " " + path
	b.mu.Lock()
	b.gates[key] = g
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.gates[key] == g {
				delete(b.gates, key)
				close(g)
			}
			b.mu.Unlock()
		})
	}
}

// Calls returns the requests received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount returns how many requests hit method+path.
func (b *Backend) CallCount(method, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Messages returns the stored messages of a conversation.
func (b *Backend) Messages(chatID string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.messages[chatID]...)
}

// HasChat reports whether a conversation exists.
func (b *Backend) HasChat(chatID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexOf(chatID) >= 0
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		body, _ := io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(strings.NewReader(string(body)))

		call := Call{
			Method:      req.Method,
			Path:        req.URL.Path,
			Auth:        req.Header.Get("Authorization"),
			ContentType: req.Header.Get("Content-Type"),
			Body:        body,
		}
		if strings.HasPrefix(call.ContentType, "application/x-www-form-urlencoded") {
			call.Form, _ = url.ParseQuery(string(body))
		}
		b.mu.Lock()
		b.calls = append(b.calls, call)
		b.mu.Unlock()
		return next(c)
	}
}

func (b *Backend) gate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		g := b.gates[c.Request().Method+" "+c.Request().URL.Path]
		b.mu.Unlock()
		if g != nil {
			select {
			case <-g:
			case <-time.After(10 * time.Second):
			}
		}
		return next(c)
	}
}

func (b *Backend) scripted(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		o, ok := b.overrides[c.Request().Method+" "+c.Request().URL.Path]
		b.mu.Unlock()
		if ok {
			return c.Blob(o.status, echo.MIMEApplicationJSON, []byte(o.body))
		}
		return next(c)
	}
}

func (b *Backend) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		_, known := b.tokens[token]
		b.mu.Unlock()
		if !ok || !known {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		}
		return next(c)
	}
}

func (b *Backend) requestOTP(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "email required"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "OTP sent to " + req.Email})
}

func (b *Backend) signIn(c echo.Context) error {
	email := c.FormValue("username")
	if c.FormValue("password") != ValidOTP {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Incorrect OTP"})
	}
	token := b.IssueToken(email, "tok-"+email)
	return c.JSON(http.StatusOK, map[string]any{
		"id":             17,
		"email":          email,
		"name":           "Test User",
		"industry":       "Health",
		"specialization": "Nursing",
		"checklist":      "gloves",
		"access_token":   token,
		"token_type":     "bearer",
	})
}

func (b *Backend) listChats(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, append([]Chat{}, b.chats...))
}

func (b *Backend) createChat(c echo.Context) error {
	name := c.FormValue("name")
	if name == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "name required"})
	}
	b.mu.Lock()
	b.nextID++
	id := strconv.Itoa(b.nextID)
	b.chats = append(b.chats, Chat{
		ChatID:      id,
		CreatorName: name,
		Skills:      c.FormValue("templates_id"),
		IsCreator:   true,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	if wm := c.FormValue("welcome_message"); wm != "" {
		b.messages[id] = append(b.messages[id], Message{MessageID: b.nextID, Message: wm, SenderName: "Disa", SenderID: 0})
	}
	b.mu.Unlock()
	return c.JSON(http.StatusCreated, map[string]any{"chat_id": id, "message": "Chat created"})
}

func (b *Backend) deleteChat(c echo.Context) error {
	id := c.Param("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Chat not found"})
	}
	b.chats = append(b.chats[:i], b.chats[i+1:]...)
	delete(b.messages, id)
	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (b *Backend) listMessages(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, append([]Message{}, b.messages[c.Param("id")]...))
}

func (b *Backend) sendMessage(c echo.Context) error {
	var req struct {
		Content     string `json:"content"`
		MessageType string `json:"messageType"`
	}
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "content required"})
	}
	token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	b.nextID++
	msg := Message{
		MessageID:  b.nextID,
		Message:    req.Content,
		SentAt:     time.Now().UTC().Format("2006-01-02T15:04:05.000000"),
		SenderName: b.tokens[token],
		SenderID:   17,
	}
	id := c.Param("id")
	b.messages[id] = append(b.messages[id], msg)
	b.mu.Unlock()
	return c.JSON(http.StatusOK, msg)
}

func (b *Backend) listMembers(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, append([]Member{}, b.members[c.Param("id")]...))
}

func (b *Backend) report(c echo.Context) error {
	var req struct {
		ReportType string `json:"report_type"`
		ChatID     string `json:"chat_id"`
	}
	if err := c.Bind(&req); err != nil || req.ReportType != "CHAT" || req.ChatID != c.Param("id") {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "bad report"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "reported"})
}

func (b *Backend) indexOf(chatID string) int {
	for i, ch := range b.chats {
		if fmt.Sprint(ch.ChatID) == chatID {
			return i
		}
	}
	return -1
}
