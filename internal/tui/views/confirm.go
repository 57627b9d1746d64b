package views

import (
	"github.com/rivo/tview"

	"github.com/matheus3301/disa/internal/tui/ui"
)

// Confirm asks a yes/no question before a destructive action.
type Confirm struct {
	*tview.Modal
	onYes func()
	onNo  func()
}

// NewConfirm creates the dialog.
func NewConfirm(theme *ui.Theme) *Confirm {
	c := &Confirm{Modal: tview.NewModal()}
	c.AddButtons([]string{"Cancel", "Confirm"}).
		SetBackgroundColor(theme.BgColor).
		SetTextColor(theme.FgColor).
		SetButtonBackgroundColor(theme.TableCursorBg).
		SetButtonTextColor(theme.TableCursorFg).
		SetDoneFunc(func(_ int, label string) {
			if label == "Confirm" {
				if c.onYes != nil {
					c.onYes()
				}
				return
			}
			if c.onNo != nil {
				c.onNo()
			}
		})
	c.SetBorderColor(theme.BorderFocusColor)
	return c
}

// Name implements Component.
func (c *Confirm) Name() string { return "Confirm" }

// FocusTarget implements Component.
func (c *Confirm) FocusTarget() tview.Primitive { return c }

// Hints implements Component.
func (c *Confirm) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Switch"},
		{Key: "Enter", Description: "Choose"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// Ask shows question; yes runs on Confirm and no on Cancel or Esc.
func (c *Confirm) Ask(question string, yes, no func()) {
	c.SetText(question)
	c.SetFocus(0)
	c.onYes = yes
	c.onNo = no
}
