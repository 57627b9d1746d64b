package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultAPIURL is the Disa backend the client talks to unless overridden.
const DefaultAPIURL = "https://mtrytz6yai.execute-api.eu-north-1.amazonaws.com"

// DefaultPlaceholderAvatarURL is shown for conversations without a group icon.
const DefaultPlaceholderAvatarURL = "https://raw.githubusercontent.com/dizio-in/cdn/refs/heads/main/images/group-icon.png"

// Duration is a time.Duration that reads and writes as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config represents the global ~/.disa/config.toml.
type Config struct {
	DefaultProfile       string   `toml:"default_profile"`
	APIURL               string   `toml:"api_url"`
	RequestTimeout       Duration `toml:"request_timeout"`
	ChatListStale        Duration `toml:"chat_list_stale"`
	MessagesStale        Duration `toml:"messages_stale"`
	ChatListRetries      int      `toml:"chat_list_retries"`
	CredentialTTL        Duration `toml:"credential_ttl"`
	RefreshInterval      Duration `toml:"refresh_interval"`
	PlaceholderAvatarURL string   `toml:"placeholder_avatar_url"`
	// RequestsPerSecond caps calls to the backend; zero disables the cap.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	RequestBurst      int     `toml:"request_burst"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		APIURL:               DefaultAPIURL,
		RequestTimeout:       Duration{15 * time.Second},
		ChatListStale:        Duration{30 * time.Second},
		MessagesStale:        Duration{10 * time.Second},
		ChatListRetries:      2,
		CredentialTTL:        Duration{30 * 24 * time.Hour},
		RefreshInterval:      Duration{5 * time.Second},
		PlaceholderAvatarURL: DefaultPlaceholderAvatarURL,
		RequestsPerSecond:    10,
		RequestBurst:         20,
	}
}

// Load reads config from the given path on top of Default(). Returns error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is like Load but treats a missing file as "use defaults".
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
