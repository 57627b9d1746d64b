package transcript

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/disa/internal/disa"
)

type memClipboard struct {
	text string
	err  error
}

func (m *memClipboard) Copy(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

type stubSharer struct {
	err   error
	title string
}

func (s *stubSharer) Share(title, _ string) (string, error) {
	s.title = title
	return "somewhere", s.err
}

func TestFormat(t *testing.T) {
	msgs := []disa.Message{
		{SenderName: "Ada", Message: "hi"},
		{SenderName: "Bo", Message: "hello"},
		{SenderName: "", Message: ""},
	}
	want := "Ada: hi\nBo: hello\n: "
	if got := Format(msgs); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestCopy(t *testing.T) {
	cb := &memClipboard{}
	res, err := Copy("text", cb)
	if err != nil || res.Outcome != OutcomeCopied || cb.text != "text" {
		t.Errorf("Copy() = %+v, %v (clipboard %q)", res, err, cb.text)
	}

	if _, err := Copy("text", nil); !errors.Is(err, ErrNoClipboard) {
		t.Errorf("Copy(nil) error = %v", err)
	}
	if _, err := Copy("text", &memClipboard{err: errors.New("denied")}); err == nil {
		t.Error("Copy() expected clipboard error")
	}
}

func TestShare(t *testing.T) {
	tests := []struct {
		name        string
		sharer      Sharer
		clipErr     error
		want        Outcome
		wantErr     bool
		wantClipped bool
	}{
		{"shared", &stubSharer{}, nil, OutcomeShared, false, false},
		{"share fails", &stubSharer{err: errors.New("cancelled")}, nil, OutcomeSharedViaFallback, false, true},
		{"no sharer", nil, nil, OutcomeSharedViaFallback, false, true},
		{"fallback fails", nil, errors.New("denied"), 0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := &memClipboard{err: tt.clipErr}
			res, err := Share(Title("Bo"), "Ada: hi", tt.sharer, cb)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Share() error = %v, wantErr %v", err, tt.wantErr)
			}
			if res.Outcome != tt.want {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.want)
			}
			if (cb.text != "") != tt.wantClipped {
				t.Errorf("clipboard = %q, wantClipped %v", cb.text, tt.wantClipped)
			}
		})
	}
}

func TestShareTitle(t *testing.T) {
	s := &stubSharer{}
	if _, err := Share(Title("Night Shift"), "x", s, nil); err != nil {
		t.Fatal(err)
	}
	if s.title != "Chat with Night Shift" {
		t.Errorf("title = %q", s.title)
	}
}

func TestOSC52Clipboard(t *testing.T) {
	var buf bytes.Buffer
	if err := (OSC52Clipboard{W: &buf}).Copy("Ada: hi"); err != nil {
		t.Fatal(err)
	}
	want := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte("Ada: hi")) + "\a"
	if buf.String() != want {
		t.Errorf("sequence = %q, want %q", buf.String(), want)
	}
	if err := (OSC52Clipboard{}).Copy("x"); !errors.Is(err, ErrNoClipboard) {
		t.Errorf("nil writer error = %v", err)
	}
}

func TestFileSharer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s := FileSharer{Dir: dir, Now: func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }}

	path, err := s.Share("Chat with Night Shift!", "Ada: hi")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "chat-with-night-shift-20260203-040506.txt" {
		t.Errorf("file name = %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Ada: hi") || !strings.HasPrefix(string(data), "Chat with Night Shift!") {
		t.Errorf("content = %q", data)
	}
	info, _ := os.Stat(path)
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permission = %o, want 0600", perm)
	}

	if _, err := (FileSharer{}).Share("x", "y"); err == nil {
		t.Error("Share() without dir expected error")
	}
}
