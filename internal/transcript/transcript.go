// Package transcript renders a conversation as text and hands it to the
// clipboard or a sharing target.
package transcript

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/disa/internal/disa"
)

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// Sharer publishes text under a title and reports where it went.
type Sharer interface {
	Share(title, text string) (string, error)
}

// Outcome says how a transcript left the application.
type Outcome int

const (
	OutcomeCopied Outcome = iota + 1
	OutcomeShared
	OutcomeSharedViaFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeShared:
		return "shared"
	case OutcomeSharedViaFallback:
		return "shared_via_clipboard"
	default:
		return "unknown"
	}
}

// Result describes a finished copy or share.
type Result struct {
	Outcome  Outcome
	Location string
}

// ErrNoClipboard is returned when a copy has nowhere to go.
var ErrNoClipboard = errors.New("no clipboard available")

// Format renders messages as "<sender>: <body>" lines in the given order.
func Format(msgs []disa.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m.SenderName+": "+m.Message)
	}
	return strings.Join(lines, "\n")
}

// Title is the share title of a conversation.
func Title(conversationName string) string {
	return "Chat with " + conversationName
}

// Copy writes text to cb.
func Copy(text string, cb Clipboard) (Result, error) {
	if cb == nil {
		return Result{}, ErrNoClipboard
	}
	if err := cb.Copy(text); err != nil {
		return Result{}, fmt.Errorf("copy transcript: %w", err)
	}
	return Result{Outcome: OutcomeCopied}, nil
}

// Share hands text to sh. When sh is nil or fails the text goes to cb
// instead and the outcome is OutcomeSharedViaFallback. Only a failing
// fallback is an error.
func Share(title, text string, sh Sharer, cb Clipboard) (Result, error) {
	if sh != nil {
		loc, err := sh.Share(title, text)
		if err == nil {
			return Result{Outcome: OutcomeShared, Location: loc}, nil
		}
	}
	if _, err := Copy(text, cb); err != nil {
		return Result{}, fmt.Errorf("share transcript: %w", err)
	}
	return Result{Outcome: OutcomeSharedViaFallback}, nil
}
