package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/tui/ui"
)

// ConversationList is the main chat table.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	chats  []rpc.Chat
	total  int
	filter string
	now    func() time.Time
}

// NewConversationList creates the conversation table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	cl := &ConversationList{Table: table, theme: theme, now: time.Now}
	cl.render()
	return cl
}

// Name implements Component.
func (cl *ConversationList) Name() string { return "Chats" }

// FocusTarget implements Component.
func (cl *ConversationList) FocusTarget() tview.Primitive { return cl }

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "d", Description: "Details"},
		{Key: "n", Description: "New chat"},
		{Key: "/", Description: "Filter"},
		{Key: "R", Description: "Refresh"},
		{Key: "1-9", Description: "Jump", Numeric: true},
	}
}

// Update shows chats, already filtered, out of total conversations.
func (cl *ConversationList) Update(chats []rpc.Chat, total int, filter string) {
	selected := cl.SelectedChat()
	cl.chats = chats
	cl.total = total
	cl.filter = filter
	cl.render()
	cl.reselect(selected)
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" SKILLS", 2},
		{" CREATED", 0},
		{" ROLE", 0},
	}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	now := cl.now()
	for i, c := range cl.chats {
		row := i + 1
		role := "member"
		if c.IsCreator {
			role = "creator"
		}
		name := cleanText(c.DisplayName)
		if i < 9 {
			name = fmt.Sprintf("[%s]%d[-] %s", ui.Tag(cl.theme.NumericKeyColor), i+1, name)
		}
		cl.SetCell(row, 0, tview.NewTableCell(" "+name).SetExpansion(1).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+cleanText(c.LastMessagePreview)).SetExpansion(2).SetMaxWidth(60).SetTextColor(cl.theme.MutedColor))
		cl.SetCell(row, 2, tview.NewTableCell(RelativeTime(unixMs(c.CreatedAtUnixMs), now)+" ").SetAlign(tview.AlignRight).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 3, tview.NewTableCell(" "+role+" ").SetTextColor(cl.theme.FgColor))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Chats (%d/%d) filter: %s ", len(cl.chats), cl.total, tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Chats (%d) ", cl.total))
	}
}

func (cl *ConversationList) reselect(id string) {
	for i, c := range cl.chats {
		if c.ID == id {
			cl.Select(i+1, 0)
			return
		}
	}
	if len(cl.chats) > 0 {
		cl.Select(1, 0)
	}
}

// SelectedChat returns the id under the cursor, or "".
func (cl *ConversationList) SelectedChat() string {
	row, _ := cl.GetSelection()
	return cl.ChatByIndex(row)
}

// ChatByIndex returns the id of the nth visible conversation, 1-based.
func (cl *ConversationList) ChatByIndex(n int) string {
	if n < 1 || n > len(cl.chats) {
		return ""
	}
	return cl.chats[n-1].ID
}
