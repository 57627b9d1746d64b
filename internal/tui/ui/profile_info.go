package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// ProfileData is the header summary of the daemon and the signed-in user.
type ProfileData struct {
	Profile string
	User    string
	Email   string
	Status  string
	Chats   int
	Uptime  time.Duration
}

// ProfileInfo displays ProfileData in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)
	return &ProfileInfo{TextView: tv, theme: theme}
}

// Update renders data.
func (pi *ProfileInfo) Update(data ProfileData) {
	pi.Clear()
	label, value := Tag(pi.theme.FgColor), Tag(pi.theme.CounterColor)
	row := func(name, v string) {
		if v == "" {
			v = "-"
		}
		_, _ = fmt.Fprintf(pi, "[%s::b]%-8s[-:-:-] [%s]%s[-]\n", label, name+":", value, tview.Escape(v))
	}
	row("Profile", data.Profile)
	row("User", data.User)
	row("Email", data.Email)
	row("Status", data.Status)
	row("Chats", fmt.Sprint(data.Chats))
	row("Uptime", formatUptime(data.Uptime))
}

func formatUptime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
