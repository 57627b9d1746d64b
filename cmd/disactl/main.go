package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"google.golang.org/grpc/status"

	"github.com/matheus3301/disa/internal/profile"
	"github.com/matheus3301/disa/internal/rpc"
	"github.com/matheus3301/disa/internal/transcript"
	"github.com/matheus3301/disa/internal/tui/client"
)

type command struct {
	usage   string
	summary string
	minArgs int
	run     func(ctx context.Context, c *client.Client, args []string) (any, error)
}

var commands = map[string]command{
	"status":   {"status", "Show profile and session status", 0, cmdStatus},
	"otp":      {"otp <email>", "Email a one-time passcode", 1, cmdOTP},
	"signin":   {"signin <email> <otp>", "Sign in with a passcode", 2, cmdSignIn},
	"logout":   {"logout", "Sign out and forget the session", 0, cmdLogout},
	"token":    {"token <token>", "Replace the session token", 1, cmdToken},
	"chats":    {"chats [filter]", "List conversations", 0, cmdChats},
	"messages": {"messages <chat-id>", "Show a conversation", 1, cmdMessages},
	"send":     {"send <chat-id> <text>", "Send a message", 2, cmdSend},
	"members":  {"members <chat-id>", "List participants", 1, cmdMembers},
	"new":      {"new <name> [description]", "Create a conversation", 1, cmdNew},
	"delete":   {"delete <chat-id>", "Delete a conversation", 1, cmdDelete},
	"report":   {"report <chat-id>", "Report a conversation", 1, cmdReport},
	"copy":     {"copy <chat-id>", "Copy a transcript to the clipboard (OSC 52)", 1, cmdCopy},
	"export":   {"export <chat-id>", "Write a transcript to the exports directory", 1, cmdExport},
	"metrics":  {"metrics", "Dump daemon metrics", 0, cmdMetrics},
	"events":   {"events [prefix]", "Follow daemon events", 0, nil},
}

var commandOrder = []string{
	"status", "otp", "signin", "logout", "token", "chats", "messages", "send",
	"members", "new", "delete", "report", "copy", "export", "metrics", "events",
}

var (
	profileName string
	jsonOut     bool
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.BoolVar(&jsonOut, "json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	profileName = profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if len(args)-1 < cmd.minArgs {
		fmt.Fprintf(os.Stderr, "usage: disactl %s\n", cmd.usage)
		os.Exit(1)
	}

	socketPath := profile.SocketPath(profileName)
	c, err := client.New(socketPath)
	if err != nil {
		fatal(fmt.Errorf("cannot connect to daemon for profile %q: %w", profileName, err))
	}
	defer func() { _ = c.Close() }()

	if args[0] == "events" {
		if err := followEvents(c, args[1:]); err != nil {
			fatal(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := cmd.run(ctx, c, args[1:])
	if err != nil {
		fatal(err)
	}
	if jsonOut {
		outputJSON(out)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: disactl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(os.Stderr, "  %-28s %s\n", c.usage, c.summary)
	}
}

func cmdStatus(ctx context.Context, c *client.Client, _ []string) (any, error) {
	resp, err := c.Session.GetStatus(ctx, &rpc.GetStatusRequest{})
	if err != nil || jsonOut {
		return resp, err
	}
	fmt.Printf("Profile: %s\n", resp.Profile)
	fmt.Printf("Status:  %s\n", resp.Status)
	if resp.User != nil {
		fmt.Printf("User:    %s <%s>\n", resp.User.Name, resp.User.Email)
	}
	fmt.Printf("Backend: %s\n", resp.APIURL)
	fmt.Printf("Uptime:  %s\n", (time.Duration(resp.UptimeMs) * time.Millisecond).Round(time.Second))
	return resp, nil
}

func cmdOTP(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Session.RequestOTP(ctx, &rpc.RequestOTPRequest{Email: args[0]})
	if err == nil && !jsonOut {
		fmt.Println(resp.Message)
	}
	return resp, err
}

func cmdSignIn(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Session.SignIn(ctx, &rpc.SignInRequest{Email: args[0], OTP: args[1]})
	if err == nil && !jsonOut {
		fmt.Printf("Signed in (%s)\n", resp.Status)
	}
	return resp, err
}

func cmdLogout(ctx context.Context, c *client.Client, _ []string) (any, error) {
	resp, err := c.Session.Logout(ctx, &rpc.LogoutRequest{})
	if err == nil && !jsonOut {
		fmt.Println("Signed out")
	}
	return resp, err
}

func cmdToken(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Session.RotateToken(ctx, &rpc.RotateTokenRequest{Token: args[0]})
	if err == nil && !jsonOut {
		fmt.Println("Token replaced")
	}
	return resp, err
}

func cmdChats(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Chat.ListChats(ctx, &rpc.ListChatsRequest{Filter: strings.Join(args, " ")})
	if err != nil || jsonOut {
		return resp, err
	}
	fmt.Printf("%-38s %-24s %-8s %s\n", "ID", "NAME", "ROLE", "SKILLS")
	for _, ch := range resp.Chats {
		role := "member"
		if ch.IsCreator {
			role = "creator"
		}
		fmt.Printf("%-38s %-24s %-8s %s\n", ch.ID, ch.DisplayName, role, ch.LastMessagePreview)
	}
	return resp, nil
}

func cmdMessages(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Message.ListMessages(ctx, &rpc.ListMessagesRequest{ChatID: args[0]})
	if err != nil || jsonOut {
		return resp, err
	}
	for _, m := range resp.Messages {
		fmt.Printf("[%s] %s: %s\n", time.UnixMilli(m.SentAtUnixMs).Format("2006-01-02 15:04"), m.SenderName, m.Body)
	}
	return resp, nil
}

func cmdSend(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Message.SendMessage(ctx, &rpc.SendMessageRequest{ChatID: args[0], Body: strings.Join(args[1:], " ")})
	if err == nil && !jsonOut {
		fmt.Println("Sent")
	}
	return resp, err
}

func cmdMembers(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Chat.ListMembers(ctx, &rpc.ChatRequest{ChatID: args[0]})
	if err != nil || jsonOut {
		return resp, err
	}
	for _, m := range resp.Members {
		flags := ""
		if !m.IsMember {
			flags += " (invited)"
		}
		if m.Blocked {
			flags += " (blocked)"
		}
		fmt.Printf("%s  %s%s\n", m.ID, m.Name, flags)
	}
	return resp, nil
}

func cmdNew(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Chat.CreateChat(ctx, &rpc.CreateChatRequest{Name: args[0], Description: strings.Join(args[1:], " ")})
	if err == nil && !jsonOut {
		fmt.Printf("Created chat %s\n", resp.ChatID)
	}
	return resp, err
}

func cmdDelete(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Chat.DeleteChat(ctx, &rpc.ChatRequest{ChatID: args[0]})
	if err == nil && !jsonOut {
		fmt.Println("Chat deleted successfully")
	}
	return resp, err
}

func cmdReport(ctx context.Context, c *client.Client, args []string) (any, error) {
	resp, err := c.Chat.ReportChat(ctx, &rpc.ChatRequest{ChatID: args[0]})
	if err == nil && !jsonOut {
		fmt.Println("Chat reported successfully")
	}
	return resp, err
}

func fetchTranscript(ctx context.Context, c *client.Client, chatID string) (*rpc.GetTranscriptResponse, error) {
	name := chatID
	if list, err := c.Chat.ListChats(ctx, &rpc.ListChatsRequest{}); err == nil {
		for _, ch := range list.Chats {
			if ch.ID == chatID {
				name = ch.DisplayName
			}
		}
	}
	return c.Chat.GetTranscript(ctx, &rpc.GetTranscriptRequest{ChatID: chatID, Name: name})
}

func cmdCopy(ctx context.Context, c *client.Client, args []string) (any, error) {
	tr, err := fetchTranscript(ctx, c, args[0])
	if err != nil {
		return nil, err
	}
	res, err := transcript.Copy(tr.Text, transcript.OSC52Clipboard{W: os.Stdout})
	if err != nil {
		return nil, err
	}
	if !jsonOut {
		fmt.Fprintln(os.Stderr, "Conversation copied to clipboard")
	}
	return map[string]string{"outcome": res.Outcome.String()}, nil
}

func cmdExport(ctx context.Context, c *client.Client, args []string) (any, error) {
	tr, err := fetchTranscript(ctx, c, args[0])
	if err != nil {
		return nil, err
	}
	res, err := transcript.Share(tr.Title, tr.Text,
		transcript.FileSharer{Dir: profile.ExportsDir(profileName)},
		transcript.OSC52Clipboard{W: os.Stdout})
	if err != nil {
		return nil, err
	}
	if !jsonOut {
		if res.Outcome == transcript.OutcomeShared {
			fmt.Printf("Conversation shared successfully: %s\n", res.Location)
		} else {
			fmt.Fprintln(os.Stderr, "Share API not available, conversation copied to clipboard")
		}
	}
	return map[string]string{"outcome": res.Outcome.String(), "location": res.Location}, nil
}

func cmdMetrics(ctx context.Context, c *client.Client, _ []string) (any, error) {
	resp, err := c.Session.GetMetrics(ctx, &rpc.GetMetricsRequest{})
	if err == nil && !jsonOut {
		fmt.Print(resp.Text)
	}
	return resp, err
}

// followEvents prints daemon events until interrupted or the stream ends.
func followEvents(c *client.Client, args []string) error {
	stream, err := c.Session.WatchEvents(context.Background(), &rpc.WatchEventsRequest{Prefix: strings.Join(args, "")})
	if err != nil {
		return err
	}
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if jsonOut {
			outputJSON(ev)
			continue
		}
		fmt.Printf("%s %-24s chat=%s %s%s\n",
			time.UnixMilli(ev.OccurredAtUnixMs).Format(time.TimeOnly), ev.Kind, ev.ChatID, ev.To, ev.Error)
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "error: %s (%s)\n", s.Message(), s.Code())
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}
