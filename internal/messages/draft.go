package messages

import (
	"context"
	"strings"
	"sync"
)

// Draft is the compose box of one conversation.
type Draft struct {
	mu   sync.Mutex
	text string
}

// Text returns the current draft.
func (d *Draft) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Set replaces the draft.
func (d *Draft) Set(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

// SendDraft sends the draft through send and clears it only when send
// succeeds. A blank draft is not sent. Edits made while send runs are kept.
func SendDraft(ctx context.Context, d *Draft, send func(ctx context.Context, body string) error) error {
	body := d.Text()
	if strings.TrimSpace(body) == "" {
		return ErrEmptyMessage
	}
	if err := send(ctx, body); err != nil {
		return err
	}
	d.mu.Lock()
	if d.text == body {
		d.text = ""
	}
	d.mu.Unlock()
	return nil
}
