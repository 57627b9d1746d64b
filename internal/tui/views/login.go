package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/matheus3301/disa/internal/tui/ui"
)

// AboutURL is the page explaining Disa, shown as a QR code on the login page.
const AboutURL = "https://dizio.in/disa"

type loginStep int

const (
	stepEmail loginStep = iota
	stepOTP
)

// LoginView asks for an email, then for the one-time passcode sent to it.
type LoginView struct {
	*tview.Flex
	theme  *ui.Theme
	email  *tview.InputField
	otp    *tview.InputField
	status *tview.TextView
	step   loginStep

	onRequestOTP func(email string)
	onSignIn     func(email, otp string)
	focus        func(p tview.Primitive)
}

// NewLoginView creates the login page.
func NewLoginView(theme *ui.Theme) *LoginView {
	lv := &LoginView{theme: theme}

	lv.email = lv.input(" Email ", 40)
	lv.otp = lv.input(" OTP   ", 12)
	lv.otp.SetMaskCharacter('*')

	lv.status = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	lv.status.SetBackgroundColor(theme.BgColor)
	lv.status.SetTextColor(theme.MutedColor)

	qr := tview.NewTextView().SetDynamicColors(true)
	qr.SetBackgroundColor(theme.BgColor)
	qr.SetTextColor(theme.FgColor)
	_, _ = fmt.Fprintf(qr, "\n%s\n  [::d]How Disa works: %s", renderQR(AboutURL), AboutURL)

	form := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 1, 0, false).
		AddItem(lv.email, 1, 0, true).
		AddItem(nil, 1, 0, false).
		AddItem(lv.otp, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(lv.status, 0, 1, false)

	lv.Flex = tview.NewFlex().
		AddItem(form, 0, 1, true).
		AddItem(qr, 0, 1, false)
	lv.SetBorder(true)
	lv.SetBorderColor(theme.BorderColor)
	lv.SetBackgroundColor(theme.BgColor)
	lv.SetTitle(" Sign in to Disa ")
	lv.SetTitleColor(theme.TitleColor)

	lv.email.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || lv.onRequestOTP == nil {
			return
		}
		email := strings.TrimSpace(lv.email.GetText())
		if email == "" {
			lv.ShowError("Enter your email address.")
			return
		}
		lv.ShowInfo("Requesting OTP...")
		lv.onRequestOTP(email)
	})
	lv.otp.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			if lv.onSignIn == nil {
				return
			}
			lv.ShowInfo("Signing in...")
			lv.onSignIn(strings.TrimSpace(lv.email.GetText()), strings.TrimSpace(lv.otp.GetText()))
		case tcell.KeyEscape:
			lv.Reset()
		}
	})

	lv.ShowInfo("Enter your email and press Enter to receive a one-time passcode.")
	return lv
}

func (lv *LoginView) input(label string, width int) *tview.InputField {
	in := tview.NewInputField().SetLabel(label).SetFieldWidth(width)
	in.SetBackgroundColor(lv.theme.BgColor)
	in.SetFieldBackgroundColor(lv.theme.BgColor)
	in.SetFieldTextColor(lv.theme.FgColor)
	in.SetLabelColor(lv.theme.MenuKeyColor)
	return in
}

// Name implements Component.
func (lv *LoginView) Name() string { return "Login" }

// Hints implements Component.
func (lv *LoginView) Hints() []ui.MenuHint {
	if lv.step == stepOTP {
		return []ui.MenuHint{
			{Key: "Enter", Description: "Sign in"},
			{Key: "Esc", Description: "Change email"},
		}
	}
	return []ui.MenuHint{{Key: "Enter", Description: "Send OTP"}}
}

// FocusTarget implements Component.
func (lv *LoginView) FocusTarget() tview.Primitive {
	if lv.step == stepOTP {
		return lv.otp
	}
	return lv.email
}

// SetOnRequestOTP sets the callback fired when an email is submitted.
func (lv *LoginView) SetOnRequestOTP(fn func(email string)) { lv.onRequestOTP = fn }

// SetOnSignIn sets the callback fired when a passcode is submitted.
func (lv *LoginView) SetOnSignIn(fn func(email, otp string)) { lv.onSignIn = fn }

// SetFocusFunc sets how the view moves focus between its fields.
func (lv *LoginView) SetFocusFunc(fn func(p tview.Primitive)) { lv.focus = fn }

// AwaitOTP moves to the passcode step and shows msg.
func (lv *LoginView) AwaitOTP(msg string) {
	lv.step = stepOTP
	lv.otp.SetText("")
	lv.ShowInfo(msg)
	lv.moveFocus()
}

// Reset returns to the email step, keeping the typed email.
func (lv *LoginView) Reset() {
	lv.step = stepEmail
	lv.otp.SetText("")
	lv.ShowInfo("Enter your email and press Enter to receive a one-time passcode.")
	lv.moveFocus()
}

// ShowInfo replaces the status line.
func (lv *LoginView) ShowInfo(msg string) {
	lv.status.SetText(" " + tview.Escape(msg))
}

// ShowError replaces the status line with an error.
func (lv *LoginView) ShowError(msg string) {
	lv.status.SetText(fmt.Sprintf(" [%s]%s[-]", ui.Tag(lv.theme.FlashErrColor), tview.Escape(msg)))
}

// Email returns the typed email.
func (lv *LoginView) Email() string { return strings.TrimSpace(lv.email.GetText()) }

func (lv *LoginView) moveFocus() {
	if lv.focus != nil {
		lv.focus(lv.FocusTarget())
	}
}

// renderQR draws content as a QR code with half-block characters, two
// modules per terminal row.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR unavailable: " + err.Error() + ")"
	}
	bitmap := qr.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString("  ")
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
