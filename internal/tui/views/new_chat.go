package views

import (
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/disa/internal/tui/ui"
)

// NewChatForm collects the name and description of a new conversation.
type NewChatForm struct {
	*tview.Form
	onSubmit func(name, description string)
	onCancel func()
}

// NewNewChatForm creates the form.
func NewNewChatForm(theme *ui.Theme) *NewChatForm {
	f := &NewChatForm{Form: tview.NewForm()}
	f.AddInputField("Name", "", 40, nil, nil).
		AddTextArea("Description", "", 60, 4, 0, nil).
		AddButton("Create", f.submit).
		AddButton("Cancel", func() {
			if f.onCancel != nil {
				f.onCancel()
			}
		})
	f.SetBorder(true)
	f.SetBorderColor(theme.BorderColor)
	f.SetBackgroundColor(theme.BgColor)
	f.SetFieldBackgroundColor(theme.BgColor)
	f.SetFieldTextColor(theme.FgColor)
	f.SetLabelColor(theme.MenuKeyColor)
	f.SetButtonBackgroundColor(theme.TableCursorBg)
	f.SetButtonTextColor(theme.TableCursorFg)
	f.SetTitle(" New chat ")
	f.SetTitleColor(theme.TitleColor)
	f.SetCancelFunc(func() {
		if f.onCancel != nil {
			f.onCancel()
		}
	})
	return f
}

// Name implements Component.
func (f *NewChatForm) Name() string { return "New chat" }

// FocusTarget implements Component.
func (f *NewChatForm) FocusTarget() tview.Primitive { return f }

// Hints implements Component.
func (f *NewChatForm) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// SetOnSubmit sets the callback fired by the Create button.
func (f *NewChatForm) SetOnSubmit(fn func(name, description string)) { f.onSubmit = fn }

// SetOnCancel sets the callback fired by Cancel or Esc.
func (f *NewChatForm) SetOnCancel(fn func()) { f.onCancel = fn }

// Reset clears both fields and focuses the name.
func (f *NewChatForm) Reset() {
	f.GetFormItemByLabel("Name").(*tview.InputField).SetText("")
	f.GetFormItemByLabel("Description").(*tview.TextArea).SetText("", false)
	f.SetFocus(0)
}

func (f *NewChatForm) submit() {
	if f.onSubmit == nil {
		return
	}
	name := f.GetFormItemByLabel("Name").(*tview.InputField).GetText()
	desc := f.GetFormItemByLabel("Description").(*tview.TextArea).GetText()
	f.onSubmit(strings.TrimSpace(name), strings.TrimSpace(desc))
}
