package tui

import "strings"

// Command is a parsed ':' command.
type Command struct {
	Name string
	Args string
}

var commandAliases = map[string]string{
	"q":       "quit",
	"q!":      "quit",
	"exit":    "quit",
	"h":       "help",
	"r":       "refresh",
	"c":       "chats",
	"share":   "export",
	"signout": "logout",
}

// ParseCommand parses input without the leading ':'. Names are lowercased
// and aliases resolved, so ":Q" and ":quit" are the same command.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	name, args, _ := strings.Cut(input, " ")
	name = strings.ToLower(name)
	if canonical, ok := commandAliases[name]; ok {
		name = canonical
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}
