package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/disa/internal/tui/ui"
)

// HelpView is the key and command reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates the help page.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{TextView: tv, theme: theme}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// FocusTarget implements Component.
func (hv *HelpView) FocusTarget() tview.Primitive { return hv }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{"Global", [][2]string{
		{":", "Command mode"},
		{"/", "Filter conversations"},
		{"?", "Help"},
		{"Esc", "Back"},
		{"Ctrl-C", "Quit"},
	}},
	{"Conversations", [][2]string{
		{"Enter", "Open (first chat when none is selected)"},
		{"1-9", "Open the Nth chat"},
		{"d", "Details and members"},
		{"n", "New chat"},
		{"R", "Refresh"},
	}},
	{"Thread", [][2]string{
		{"i", "Focus the compose box"},
		{"Enter", "Send (in the compose box)"},
		{"Esc", "Leave the compose box"},
		{"d", "Details"},
	}},
	{"Details", [][2]string{
		{"c", "Copy the transcript to the clipboard"},
		{"e", "Export the transcript to a file"},
		{"x", "Delete the chat"},
		{"r", "Report the chat"},
	}},
	{"Commands", [][2]string{
		{":chats", "Conversation list"},
		{":chat <name>", "Open a chat by name"},
		{":new", "New chat"},
		{":refresh", "Refetch the current page"},
		{":copy / :export", "Transcript of the current chat"},
		{":delete / :report", "Act on the current chat"},
		{":token <token>", "Replace the session token"},
		{":logout", "Sign out"},
		{":help / :h", "This page"},
		{":quit / :q", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.MenuKeyColor)
	for _, s := range helpSections {
		_, _ = fmt.Fprintf(hv, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, r := range s.rows {
			_, _ = fmt.Fprintf(hv, "  [%s]%-18s[-] %s\n", kc, tview.Escape(r[0]), r[1])
		}
	}
}
