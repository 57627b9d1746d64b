package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/tui/ui"
)

// ConversationInfo shows a conversation's details and members.
type ConversationInfo struct {
	*tview.Flex
	theme   *ui.Theme
	details *tview.TextView
	members *tview.Table
	chat    rpc.Chat
	now     func() time.Time
}

// NewConversationInfo creates the details page.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	details := tview.NewTextView().SetDynamicColors(true)
	details.SetBorder(true)
	details.SetBorderColor(theme.BorderColor)
	details.SetBackgroundColor(theme.BgColor)
	details.SetTextColor(theme.FgColor)
	details.SetTitleColor(theme.TitleColor)

	members := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	members.SetBorder(true)
	members.SetBorderColor(theme.BorderColor)
	members.SetBackgroundColor(theme.BgColor)
	members.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	members.SetTitle(" Members ")
	members.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		Flex: tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(details, 9, 0, false).
			AddItem(members, 0, 1, true),
		theme:   theme,
		details: details,
		members: members,
		now:     time.Now,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// FocusTarget implements Component.
func (ci *ConversationInfo) FocusTarget() tview.Primitive { return ci.members }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open chat"},
		{Key: "c", Description: "Copy"},
		{Key: "e", Description: "Export"},
		{Key: "x", Description: "Delete"},
		{Key: "r", Description: "Report"},
		{Key: "Esc", Description: "Back"},
	}
}

// ChatID returns the conversation shown.
func (ci *ConversationInfo) ChatID() string { return ci.chat.ID }

// Update renders chat's details.
func (ci *ConversationInfo) Update(chat rpc.Chat) {
	ci.chat = chat
	ci.details.Clear()
	ci.details.SetTitle(fmt.Sprintf(" %s ", cleanText(chat.DisplayName)))

	label := ui.Tag(ci.theme.MenuKeyColor)
	value := ui.Tag(ci.theme.CounterColor)
	role := "Member"
	if chat.IsCreator {
		role = "Creator"
	}
	created := "-"
	if t := unixMs(chat.CreatedAtUnixMs); !t.IsZero() {
		created = t.Local().Format("Jan 2, 2006 15:04") + " (" + RelativeTime(t, ci.now()) + ")"
	}
	rows := [][2]string{
		{"Name", cleanText(chat.DisplayName)},
		{"Chat ID", cleanText(chat.ID)},
		{"Skills", cleanText(chat.LastMessagePreview)},
		{"Created", created},
		{"Your role", role},
		{"Avatar", cleanText(chat.AvatarURL)},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(ci.details, " [%s::b]%-10s[-:-:-] [%s]%s[-]\n", label, r[0]+":", value, r[1])
	}
}

// UpdateMembers renders the member table.
func (ci *ConversationInfo) UpdateMembers(members []rpc.Member) {
	ci.members.Clear()
	for col, h := range []string{" NAME", " STATUS", " BLOCKED"} {
		ci.members.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(ci.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(headerExpansion(col)))
	}
	for i, m := range members {
		status := "invited"
		if m.IsMember {
			status = "member"
		}
		blocked := ""
		if m.Blocked {
			blocked = "yes"
		}
		ci.members.SetCell(i+1, 0, tview.NewTableCell(" "+cleanText(m.Name)).SetExpansion(1).SetTextColor(ci.theme.FgColor))
		ci.members.SetCell(i+1, 1, tview.NewTableCell(" "+status+" ").SetTextColor(ci.theme.FgColor))
		ci.members.SetCell(i+1, 2, tview.NewTableCell(" "+blocked+" ").SetTextColor(ci.theme.FlashErrColor))
	}
	ci.members.SetTitle(fmt.Sprintf(" Members (%d) ", len(members)))
}

func headerExpansion(col int) int {
	if col == 0 {
		return 1
	}
	return 0
}
