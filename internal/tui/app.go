// Package tui is the terminal client of a profile daemon.
package tui

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"

	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/config"
	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/transcript"
	"github.com/matheus3301/disa/internal/tui/client"
	"github.com/matheus3301/disa/internal/tui/keys"
	"github.com/matheus3301/disa/internal/tui/model"
	"github.com/matheus3301/disa/internal/tui/ui"
	"github.com/matheus3301/disa/internal/tui/views"
)

const (
	pageLogin   = "login"
	pageChats   = "chats"
	pageThread  = "thread"
	pageInfo    = "info"
	pageNew     = "new"
	pageHelp    = "help"
	pageConfirm = "confirm"
)

const (
	callTimeout = 15 * time.Second
	promptRows  = 3
)

// Options configures an App.
type Options struct {
	Profile    string
	Config     *config.Config
	Logger     *zap.Logger
	ExportsDir string
	// Clipboard defaults to OSC 52 on stdout.
	Clipboard transcript.Clipboard
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	layout   *tview.Flex
	pages    *ui.Pages
	prompt   *ui.Prompt
	info     *ui.ProfileInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	flash    *ui.FlashBar
	registry *keys.Registry

	login   *views.LoginView
	list    *views.ConversationList
	thread  *views.MessageThread
	details *views.ConversationInfo
	newChat *views.NewChatForm
	help    *views.HelpView
	confirm *views.Confirm
	comps   map[string]ui.Component

	vm        *model.ViewModel
	rpc       *client.Client
	opts      Options
	log       *zap.Logger
	clipboard transcript.Clipboard
	sharer    transcript.Sharer

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI over a connected daemon client.
func NewApp(c *client.Client, opts Options) *App {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = transcript.OSC52Clipboard{W: os.Stdout}
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		prompt:    ui.NewPrompt(theme),
		info:      ui.NewProfileInfo(theme),
		menu:      ui.NewMenu(theme),
		crumbs:    ui.NewCrumbs(theme),
		flash:     ui.NewFlashBar(theme),
		registry:  keys.NewRegistry(),
		login:     views.NewLoginView(theme),
		list:      views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme),
		details:   views.NewConversationInfo(theme),
		newChat:   views.NewNewChatForm(theme),
		help:      views.NewHelpView(theme),
		confirm:   views.NewConfirm(theme),
		vm:        model.NewViewModel(c.Session, c.Chat, c.Message),
		rpc:       c,
		opts:      opts,
		log:       opts.Logger,
		clipboard: opts.Clipboard,
		sharer:    transcript.FileSharer{Dir: opts.ExportsDir},
		ctx:       ctx,
		cancel:    cancel,
	}
	a.comps = map[string]ui.Component{
		pageLogin:   a.login,
		pageChats:   a.list,
		pageThread:  a.thread,
		pageInfo:    a.details,
		pageNew:     a.newChat,
		pageHelp:    a.help,
		pageConfirm: a.confirm,
	}

	a.setupLayout()
	a.setupBindings()
	a.setupCallbacks()
	return a
}

func (a *App) setupLayout() {
	for name, comp := range a.comps {
		a.pages.AddPage(name, comp, name != pageConfirm, false)
	}
	a.pages.SetOnChange(func(stack []string) {
		names := make([]string, 0, len(stack))
		for _, p := range stack {
			names = append(names, a.comps[p].Name())
		}
		a.crumbs.Update(names)
		a.refreshMenu()
	})

	header := tview.NewFlex().
		AddItem(a.info, 42, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(ui.NewLogo(a.theme), 14, 0, false)

	a.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 7, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flash, 1, 0, false)
	a.layout.SetBackgroundColor(a.theme.BgColor)

	a.app.SetRoot(a.layout, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: ':', Label: ":", Description: "Command",
		Handler: func() { a.showPrompt(ui.PromptCommand, "") }})
	a.registry.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: '/', Label: "/", Description: "Filter",
		Handler: func() {
			if a.pages.Current() != pageChats {
				a.showChats()
			}
			a.showPrompt(ui.PromptFilter, a.vm.Filter())
		}})
	a.registry.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: '?', Label: "?", Description: "Help",
		Handler: func() { a.push(pageHelp) }})
	a.registry.AddGlobal(&keys.Action{Key: tcell.KeyEscape, Label: "Esc", Description: "Back", Hidden: true,
		Handler: a.back})
	a.registry.AddGlobal(&keys.Action{Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Quit",
		Handler: a.Stop})

	a.registry.AddPage(pageChats, &keys.Action{Key: tcell.KeyEnter, Label: "Enter", Description: "Open",
		Handler: func() { a.openThread(a.selectedOrFirst()) }})
	a.registry.AddPage(pageChats, &keys.Action{Key: tcell.KeyRune, Rune: 'd', Label: "d", Description: "Details",
		Handler: func() { a.openDetails(a.selectedOrFirst()) }})
	a.registry.AddPage(pageChats, &keys.Action{Key: tcell.KeyRune, Rune: 'n', Label: "n", Description: "New chat",
		Handler: a.showNewChat})
	a.registry.AddPage(pageChats, &keys.Action{Key: tcell.KeyRune, Rune: 'R', Label: "R", Description: "Refresh",
		Handler: func() { a.reloadChats(true) }})
	for n := 1; n <= 9; n++ {
		a.registry.AddPage(pageChats, &keys.Action{Key: tcell.KeyRune, Rune: rune('0' + n), Hidden: true,
			Handler: func() {
				if id := a.list.ChatByIndex(n); id != "" {
					a.openThread(id)
				}
			}})
	}

	a.registry.AddPage(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'i', Label: "i", Description: "Compose",
		Handler: func() { a.app.SetFocus(a.thread.Composer()) }})
	a.registry.AddPage(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'd', Label: "d", Description: "Details",
		Handler: func() { a.openDetails(a.thread.ChatID()) }})
	a.registry.AddPage(pageThread, &keys.Action{Key: tcell.KeyRune, Rune: 'R', Label: "R", Description: "Refresh",
		Handler: func() { a.reloadThread(a.thread.ChatID(), true) }})

	a.registry.AddPage(pageInfo, &keys.Action{Key: tcell.KeyEnter, Label: "Enter", Description: "Open chat",
		Handler: func() { a.openThread(a.details.ChatID()) }})
	a.registry.AddPage(pageInfo, &keys.Action{Key: tcell.KeyRune, Rune: 'c', Label: "c", Description: "Copy",
		Handler: func() { a.copyTranscript(a.details.ChatID()) }})
	a.registry.AddPage(pageInfo, &keys.Action{Key: tcell.KeyRune, Rune: 'e', Label: "e", Description: "Export",
		Handler: func() { a.exportTranscript(a.details.ChatID()) }})
	a.registry.AddPage(pageInfo, &keys.Action{Key: tcell.KeyRune, Rune: 'x', Label: "x", Description: "Delete",
		Handler: func() { a.deleteChat(a.details.ChatID()) }})
	a.registry.AddPage(pageInfo, &keys.Action{Key: tcell.KeyRune, Rune: 'r', Label: "r", Description: "Report",
		Handler: func() { a.reportChat(a.details.ChatID()) }})
}

func (a *App) setupCallbacks() {
	a.list.SetSelectedFunc(func(row, _ int) {
		a.openThread(a.list.ChatByIndex(row))
	})

	a.login.SetFocusFunc(func(p tview.Primitive) { a.app.SetFocus(p) })
	a.login.SetOnRequestOTP(func(email string) {
		a.async(func(ctx context.Context) func() {
			msg, err := a.vm.RequestOTP(ctx, email)
			return func() {
				if err != nil {
					a.login.ShowError(errText(err))
					return
				}
				a.login.AwaitOTP(msg)
				a.vm.Flash.Info(msg)
			}
		})
	})
	a.login.SetOnSignIn(func(email, otp string) {
		a.async(func(ctx context.Context) func() {
			err := a.vm.SignIn(ctx, email, otp)
			return func() {
				if err != nil {
					a.login.ShowError(errText(err))
					return
				}
				a.log.Info("signed in")
				a.vm.Flash.Info("Signed in as " + email)
				a.login.Reset()
				a.showChats()
				a.reloadChats(false)
			}
		})
	})

	a.thread.SetOnSend(func(chatID string) {
		a.async(func(ctx context.Context) func() {
			err := a.vm.SendDraft(ctx, chatID)
			msgs := a.vm.Messages(chatID)
			return func() {
				switch {
				case errors.Is(err, messages.ErrEmptyMessage):
					return
				case err != nil:
					a.vm.Flash.Errf("Send failed: %s", errText(err))
					return
				}
				if a.thread.ChatID() == chatID {
					a.thread.SyncDraft()
					a.thread.Update(msgs)
				}
			}
		})
	})
	a.thread.Composer().SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		return ev
	})

	a.newChat.SetOnCancel(a.back)
	a.newChat.SetOnSubmit(func(name, description string) {
		a.async(func(ctx context.Context) func() {
			id, err := a.vm.Create(ctx, name, description)
			return func() {
				if err != nil && id == "" {
					a.vm.Flash.Errf("Failed to create chat: %s", errText(err))
					return
				}
				a.vm.Flash.Info("Chat created")
				a.renderList()
				a.back()
				a.openThread(id)
			}
		})
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		if mode == ui.PromptFilter {
			a.vm.SetFilter(text)
			a.renderList()
			return
		}
		a.runCommand(ParseCommand(text))
	})
	a.prompt.SetOnCancel(a.hidePrompt)
	a.prompt.SetChangedFunc(func(text string) {
		if a.prompt.Mode() == ui.PromptFilter {
			a.vm.SetFilter(text)
			a.renderList()
		}
	})
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch a.pages.Current() {
	case pageLogin, pageNew, pageConfirm:
		return ev
	}
	switch a.app.GetFocus().(type) {
	case *tview.InputField, *tview.TextArea:
		return ev
	}
	if a.registry.HandleEvent(a.pages.Current(), ev) {
		return nil
	}
	return ev
}

func (a *App) runCommand(cmd Command) {
	chatID := a.currentChat()
	switch cmd.Name {
	case "":
	case "quit":
		a.Stop()
	case "help":
		a.push(pageHelp)
	case "chats":
		a.showChats()
	case "refresh":
		a.reloadChats(true)
		if a.pages.Current() == pageThread {
			a.reloadThread(a.thread.ChatID(), true)
		}
	case "new":
		a.showNewChat()
	case "chat":
		c, ok := a.vm.FindChat(cmd.Args)
		if !ok {
			a.vm.Flash.Warn("No chat matches " + cmd.Args)
			break
		}
		a.openThread(c.ID)
	case "copy":
		a.copyTranscript(chatID)
	case "export":
		a.exportTranscript(chatID)
	case "delete":
		a.deleteChat(chatID)
	case "report":
		a.reportChat(chatID)
	case "token":
		a.rotateToken(cmd.Args)
	case "logout":
		a.logout()
	default:
		a.vm.Flash.Errf("Unknown command :%s", cmd.Name)
	}
	a.renderChrome()
}

// currentChat is the conversation the user is looking at, falling back to
// the list cursor.
func (a *App) currentChat() string {
	switch a.pages.Current() {
	case pageInfo:
		return a.details.ChatID()
	case pageThread:
		return a.thread.ChatID()
	}
	if id := a.list.SelectedChat(); id != "" {
		return id
	}
	return a.vm.Active()
}

func (a *App) selectedOrFirst() string {
	return a.vm.Select(a.list.SelectedChat())
}

func (a *App) push(page string) {
	a.pages.Push(page)
	a.app.SetFocus(a.comps[page].FocusTarget())
}

func (a *App) back() {
	if a.pages.Pop() == "" {
		return
	}
	a.app.SetFocus(a.comps[a.pages.Current()].FocusTarget())
}

func (a *App) showLogin() {
	a.login.Reset()
	a.pages.Reset(pageLogin)
	a.app.SetFocus(a.login.FocusTarget())
}

func (a *App) showChats() {
	a.pages.Reset(pageChats)
	a.renderList()
	a.app.SetFocus(a.list)
}

func (a *App) showNewChat() {
	a.newChat.Reset()
	a.push(pageNew)
}

func (a *App) showPrompt(mode ui.PromptMode, initial string) {
	a.prompt.Activate(mode, initial)
	a.layout.ResizeItem(a.prompt, promptRows, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.layout.ResizeItem(a.prompt, 0, 0)
	if page := a.pages.Current(); page != "" {
		a.app.SetFocus(a.comps[page].FocusTarget())
	}
}

func (a *App) openThread(chatID string) {
	if chatID == "" {
		a.vm.Flash.Warn("No conversation selected")
		return
	}
	a.vm.Select(chatID)
	c, _ := a.vm.Chat(chatID)
	self := ""
	if st := a.vm.Status(); st != nil && st.User != nil {
		self = st.User.ID
	}
	a.thread.Open(chatID, c.DisplayName, self, a.vm.Draft(chatID))
	a.thread.Update(a.vm.Messages(chatID))
	if a.pages.Current() == pageInfo {
		a.pages.Pop()
	}
	a.push(pageThread)
	a.reloadThread(chatID, false)
}

func (a *App) openDetails(chatID string) {
	c, ok := a.vm.Chat(chatID)
	if !ok {
		a.vm.Flash.Warn("No conversation selected")
		return
	}
	a.details.Update(c)
	a.details.UpdateMembers(a.vm.Members(chatID))
	a.push(pageInfo)
	a.async(func(ctx context.Context) func() {
		err := a.vm.LoadMembers(ctx, chatID)
		members := a.vm.Members(chatID)
		return func() {
			if err != nil {
				a.vm.Flash.Errf("Failed to load members: %s", errText(err))
				return
			}
			if a.details.ChatID() == chatID {
				a.details.UpdateMembers(members)
			}
		}
	})
}

func (a *App) reloadChats(refresh bool) {
	a.async(func(ctx context.Context) func() {
		err := a.vm.LoadChats(ctx, refresh)
		return func() {
			if err != nil {
				a.vm.Flash.Errf("Failed to load chats: %s", errText(err))
			}
			a.renderList()
		}
	})
}

func (a *App) reloadThread(chatID string, refresh bool) {
	if chatID == "" {
		return
	}
	a.async(func(ctx context.Context) func() {
		err := a.vm.LoadMessages(ctx, chatID, refresh)
		msgs := a.vm.Messages(chatID)
		return func() {
			if err != nil {
				a.vm.Flash.Errf("Failed to load messages: %s", errText(err))
				return
			}
			if a.thread.ChatID() == chatID {
				a.thread.Update(msgs)
			}
		}
	})
}

func (a *App) renderList() {
	a.list.Update(a.vm.Chats(), a.vm.TotalChats(), a.vm.Filter())
}

func (a *App) copyTranscript(chatID string) {
	if chatID == "" {
		a.vm.Flash.Warn("No conversation selected")
		return
	}
	a.async(func(ctx context.Context) func() {
		_, err := a.vm.Copy(ctx, chatID, a.clipboard)
		return func() {
			if err != nil {
				a.log.Warn("copy failed", zap.String("chat_id", chatID), zap.Error(err))
				a.vm.Flash.Errf("Failed to copy conversation")
				return
			}
			a.vm.Flash.Info("Conversation copied to clipboard")
		}
	})
}

func (a *App) exportTranscript(chatID string) {
	if chatID == "" {
		a.vm.Flash.Warn("No conversation selected")
		return
	}
	a.async(func(ctx context.Context) func() {
		res, err := a.vm.Share(ctx, chatID, a.sharer, a.clipboard)
		return func() {
			switch {
			case err != nil:
				a.log.Warn("share failed", zap.String("chat_id", chatID), zap.Error(err))
				a.vm.Flash.Errf("Failed to share conversation")
			case res.Outcome == transcript.OutcomeSharedViaFallback:
				a.vm.Flash.Warn("Share API not available, conversation copied to clipboard")
			default:
				a.vm.Flash.Info("Conversation shared successfully: " + res.Location)
			}
		}
	})
}

func (a *App) deleteChat(chatID string) {
	c, ok := a.vm.Chat(chatID)
	if !ok {
		a.vm.Flash.Warn("No conversation selected")
		return
	}
	a.ask("Delete the chat with "+c.DisplayName+"? This cannot be undone.", func() {
		a.async(func(ctx context.Context) func() {
			err := a.vm.Delete(ctx, chatID)
			return func() {
				// A failed list reload after a successful delete still counts.
				if _, still := a.vm.Chat(chatID); err != nil && still {
					a.log.Warn("delete failed", zap.String("chat_id", chatID), zap.Error(err))
					a.vm.Flash.Errf("Failed to delete chat")
					return
				}
				a.vm.Flash.Info("Chat deleted successfully")
				a.showChats()
			}
		})
	})
}

func (a *App) reportChat(chatID string) {
	c, ok := a.vm.Chat(chatID)
	if !ok {
		a.vm.Flash.Warn("No conversation selected")
		return
	}
	a.ask("Report the chat with "+c.DisplayName+" to the Disa team?", func() {
		a.async(func(ctx context.Context) func() {
			err := a.vm.Report(ctx, chatID)
			return func() {
				if err != nil {
					a.log.Warn("report failed", zap.String("chat_id", chatID), zap.Error(err))
					a.vm.Flash.Errf("Failed to report chat")
					return
				}
				a.vm.Flash.Info("Chat reported successfully")
			}
		})
	})
}

func (a *App) ask(question string, yes func()) {
	a.confirm.Ask(question, func() {
		a.back()
		yes()
	}, a.back)
	a.push(pageConfirm)
}

func (a *App) rotateToken(token string) {
	if token == "" {
		a.vm.Flash.Warn("Usage: :token <token>")
		return
	}
	a.async(func(ctx context.Context) func() {
		err := a.vm.RotateToken(ctx, token)
		return func() {
			if err != nil {
				a.vm.Flash.Errf("Failed to replace token: %s", errText(err))
				return
			}
			a.vm.Flash.Info("Session token replaced")
			a.reloadChats(true)
		}
	})
}

func (a *App) logout() {
	a.async(func(ctx context.Context) func() {
		err := a.vm.Logout(ctx)
		return func() {
			if err != nil {
				a.vm.Flash.Errf("Logout failed: %s", errText(err))
				return
			}
			a.vm.Flash.Info("Signed out")
			a.showLogin()
		}
	})
}

// async runs work off the UI goroutine and applies the returned update on it.
func (a *App) async(work func(ctx context.Context) func()) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		update := work(ctx)
		if a.ctx.Err() != nil {
			return
		}
		a.app.QueueUpdateDraw(func() {
			if update != nil {
				update()
			}
			a.renderChrome()
		})
	}()
}

func (a *App) refreshMenu() {
	page := a.pages.Current()
	comp, ok := a.comps[page]
	if !ok {
		return
	}
	hints := append(comp.Hints(), a.registry.Hints("")...)
	a.menu.Update(hints)
}

// renderChrome redraws the header and the flash bar.
func (a *App) renderChrome() {
	data := ui.ProfileData{Profile: a.opts.Profile, Chats: a.vm.TotalChats(), Uptime: a.vm.Uptime()}
	if st := a.vm.Status(); st != nil {
		data.Status = st.Status
		if st.User != nil {
			data.User = st.User.Name
			data.Email = st.User.Email
		}
	}
	a.info.Update(data)
	a.flash.Update(a.vm.Flash.Current())
	a.refreshMenu()
}

func (a *App) handleEvent(ev *rpc.Event) {
	switch {
	case ev.Kind == bus.KindSessionUnauthorized:
		a.vm.Flash.Warn("Disa rejected the session token. Run :logout and sign in again.")
	case ev.Kind == bus.KindSessionStatusChanged && ev.To == rpc.StatusAnonymous:
		if a.pages.Current() != pageLogin {
			a.showLogin()
		}
	case ev.Kind == bus.KindSessionStatusChanged && ev.To == rpc.StatusAuthenticated:
		if a.pages.Current() == pageLogin {
			a.showChats()
			a.reloadChats(false)
		}
	case ev.Kind == bus.KindChatDeleted, ev.Kind == bus.KindChatCreated, ev.Kind == bus.KindChatsInvalidated:
		a.reloadChats(false)
	case ev.Kind == bus.KindMessageSent && ev.ChatID == a.thread.ChatID():
		a.reloadThread(ev.ChatID, false)
	}
}

// watchEvents follows the daemon's event stream, reconnecting until the app
// stops.
func (a *App) watchEvents() {
	for a.ctx.Err() == nil {
		stream, err := a.rpc.Session.WatchEvents(a.ctx, &rpc.WatchEventsRequest{})
		if err == nil {
			for {
				ev, err := stream.Recv()
				if err != nil {
					a.log.Debug("event stream ended", zap.Error(err))
					break
				}
				a.app.QueueUpdateDraw(func() {
					a.handleEvent(ev)
					a.renderChrome()
				})
			}
		}
		select {
		case <-a.ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (a *App) startRefreshLoop() {
	interval := a.opts.Config.RefreshInterval.Duration
	if interval <= 0 {
		interval = 5 * time.Second
	}
	refresh := time.NewTicker(interval)
	tick := time.NewTicker(time.Second)
	go func() {
		defer refresh.Stop()
		defer tick.Stop()
		for {
			select {
			case <-refresh.C:
				ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
				_, _ = a.vm.LoadStatus(ctx)
				if a.vm.Authenticated() {
					_ = a.vm.LoadChats(ctx, false)
				}
				cancel()
				a.app.QueueUpdateDraw(func() {
					if a.pages.Current() == pageChats {
						a.renderList()
					}
					a.renderChrome()
				})
			case <-tick.C:
				a.app.QueueUpdateDraw(a.renderChrome)
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	a.pages.Reset(pageChats)
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		st, err := a.vm.LoadStatus(ctx)
		if err == nil && st.Status == rpc.StatusAuthenticated {
			err = a.vm.LoadChats(ctx, false)
		}
		cancel()
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.vm.Flash.Errf("Daemon: %s", errText(err))
			}
			if a.vm.Authenticated() {
				a.showChats()
			} else {
				a.showLogin()
			}
			a.renderChrome()
		})
		go a.watchEvents()
		a.startRefreshLoop()
	}()
	return a.app.Run()
}

// Stop shuts the TUI down.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func errText(err error) string {
	if s, ok := status.FromError(err); ok {
		return s.Message()
	}
	return err.Error()
}
