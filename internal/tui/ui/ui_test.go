package ui

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/rivo/tview"
)

func TestPagesStack(t *testing.T) {
	p := NewPages()
	for _, name := range []string{"login", "chats", "thread", "info"} {
		p.AddPage(name, tview.NewBox(), true, false)
	}
	var seen [][]string
	p.SetOnChange(func(stack []string) { seen = append(seen, stack) })

	p.Reset("chats")
	p.Push("thread")
	p.Push("thread")
	p.Push("info")
	if got := p.Stack(); !slices.Equal(got, []string{"chats", "thread", "info"}) {
		t.Fatalf("stack = %v", got)
	}
	if top := p.Pop(); top != "info" {
		t.Errorf("Pop() = %q, want info", top)
	}
	p.Pop()
	if top := p.Pop(); top != "" {
		t.Errorf("Pop() on root = %q, want empty", top)
	}
	if p.Current() != "chats" {
		t.Errorf("Current() = %q, want chats", p.Current())
	}
	if len(seen) != 5 {
		t.Errorf("onChange fired %d times, want 5", len(seen))
	}
}

func TestFlashExpires(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f := NewFlashModel()
	f.now = func() time.Time { return now }

	if f.Current() != nil {
		t.Fatal("new model has a message")
	}
	f.Err(errors.New("Failed to delete chat"))
	msg := f.Current()
	if msg == nil || msg.Level != FlashErr || msg.Text != "Failed to delete chat" {
		t.Fatalf("Current() = %+v", msg)
	}

	now = now.Add(11 * time.Second)
	if f.Current() != nil {
		t.Error("message still live after expiry")
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{42 * time.Minute, "42m"},
		{3*time.Hour + 5*time.Minute, "3h5m"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
