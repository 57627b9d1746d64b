package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/tui/ui"
)

// MessageThread shows one conversation and its compose box.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	chatID   string
	chatName string
	selfID   string
	draft    *messages.Draft
	onSend   func(chatID string)
	now      func() time.Time
}

// NewMessageThread creates the thread page.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	msgs := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	msgs.SetBorder(true)
	msgs.SetBorderColor(theme.BorderColor)
	msgs.SetBackgroundColor(theme.BgColor)
	msgs.SetTextColor(theme.FgColor)
	msgs.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0).
		SetPlaceholder("Type a message")
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i) ")
	composer.SetTitleColor(theme.TitleColor)

	mt := &MessageThread{
		Flex: tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(msgs, 0, 1, true).
			AddItem(composer, 3, 0, false),
		theme:    theme,
		messages: msgs,
		composer: composer,
		now:      time.Now,
	}

	composer.SetChangedFunc(func(text string) {
		if mt.draft != nil {
			mt.draft.Set(text)
		}
	})
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil && mt.chatID != "" {
			mt.onSend(mt.chatID)
		}
	})
	return mt
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.chatName != "" {
		return mt.chatName
	}
	return "Messages"
}

// FocusTarget implements Component.
func (mt *MessageThread) FocusTarget() tview.Primitive { return mt.messages }

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "d", Description: "Details"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

// Open switches the page to chatID, restoring its draft. selfID marks the
// signed-in user's own messages.
func (mt *MessageThread) Open(chatID, name, selfID string, draft *messages.Draft) {
	mt.chatID = chatID
	mt.chatName = name
	mt.selfID = selfID
	mt.draft = nil
	mt.composer.SetText(draft.Text())
	mt.draft = draft
	mt.messages.Clear()
	mt.messages.SetTitle(fmt.Sprintf(" %s ", cleanText(name)))
}

// ChatID returns the open conversation.
func (mt *MessageThread) ChatID() string { return mt.chatID }

// SetOnSend sets the callback fired when Enter is pressed in the composer.
func (mt *MessageThread) SetOnSend(fn func(chatID string)) { mt.onSend = fn }

// SyncDraft copies the draft back into the composer after a send.
func (mt *MessageThread) SyncDraft() {
	if mt.draft == nil {
		return
	}
	d := mt.draft
	mt.draft = nil
	mt.composer.SetText(d.Text())
	mt.draft = d
}

// Update renders msgs in backend order.
func (mt *MessageThread) Update(msgs []rpc.Message) {
	mt.messages.Clear()
	if len(msgs) == 0 {
		_, _ = fmt.Fprintf(mt.messages, "\n [%s]No messages yet.[-]", ui.Tag(mt.theme.MutedColor))
		return
	}
	now := mt.now()
	for _, m := range msgs {
		color := mt.theme.OtherMessageColor
		if mt.selfID != "" && m.SenderID == mt.selfID {
			color = mt.theme.OwnMessageColor
		}
		_, _ = fmt.Fprintf(mt.messages, "[%s::b]%s[-:-:-] [%s]%s[-]\n%s\n\n",
			ui.Tag(color), cleanText(m.SenderName),
			ui.Tag(mt.theme.MutedColor), clockTime(unixMs(m.SentAtUnixMs), now),
			cleanText(m.Body))
	}
	mt.messages.ScrollToEnd()
}

// Composer returns the compose box for focus handling.
func (mt *MessageThread) Composer() *tview.InputField { return mt.composer }

// Messages returns the message pane for focus handling.
func (mt *MessageThread) Messages() *tview.TextView { return mt.messages }
