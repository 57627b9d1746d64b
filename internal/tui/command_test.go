package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"q", Command{Name: "quit"}},
		{":Quit", Command{Name: "quit"}},
		{"h", Command{Name: "help"}},
		{"chat  Nurse Joy ", Command{Name: "chat", Args: "Nurse Joy"}},
		{"token abc.def", Command{Name: "token", Args: "abc.def"}},
		{"share", Command{Name: "export"}},
		{"", Command{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseCommand(tt.input); got != tt.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
