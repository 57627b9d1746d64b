package transcript

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// OSC52Clipboard copies through the terminal's OSC 52 escape sequence,
// which most terminal emulators forward to the system clipboard.
type OSC52Clipboard struct {
	W io.Writer
}

// Copy implements Clipboard.
func (c OSC52Clipboard) Copy(text string) error {
	if c.W == nil {
		return ErrNoClipboard
	}
	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	_, err := io.WriteString(c.W, seq)
	return err
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// FileSharer writes each shared transcript to a new file in Dir.
type FileSharer struct {
	Dir string
	Now func() time.Time
}

// Share implements Sharer and returns the written path.
func (s FileSharer) Share(title, text string) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("no export directory")
	}
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return "", err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "chat"
	}
	name := fmt.Sprintf("%s-%s.txt", slug, now().UTC().Format("20060102-150405"))
	path := filepath.Join(s.Dir, name)
	content := title + "\n\n" + text + "\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", err
	}
	return path, nil
}
