// Package credstore persists the signed-in user across daemon restarts as two
// cookie-shaped entries: userData (URL-encoded JSON) and accessToken (raw).
package credstore

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/store"
)

const (
	UserDataKey    = "userData"
	AccessTokenKey = "accessToken"

	// DefaultTTL is how long entries stay valid without a rewrite.
	DefaultTTL = 30 * 24 * time.Hour
)

// Record is the authenticated user as returned by sign-in.
type Record struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	Checklist      string    `json:"checklist,omitempty"`
	ProfilePicURL  string    `json:"profile_pic_url,omitempty"`
	AccessToken    string    `json:"access_token"`
	IssuedAt       time.Time `json:"issued_at"`
}

// Store reads and writes the credential entries of one profile.
type Store struct {
	db  *store.DB
	log *zap.Logger
	now func() time.Time
}

// New creates a Store over an opened, migrated database.
func New(db *store.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log, now: time.Now}
}

// Read restores the persisted record. It reports false when either entry is
// missing, expired or unreadable. Only a userData entry that cannot be
// decoded is removed, together with the token.
func (s *Store) Read() (*Record, bool) {
	now := s.now()
	userData, err := s.db.GetCookie(UserDataKey, now)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("read userData failed", zap.Error(err))
		return nil, false
	}

	rec, err := decode(userData.Value)
	if err != nil {
		s.discard("decode userData", err)
		return nil, false
	}

	token, err := s.db.GetCookie(AccessTokenKey, now)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("read accessToken failed", zap.Error(err))
		}
		return nil, false
	}
	// Token rotation rewrites only accessToken.
	rec.AccessToken = token.Value
	return rec, true
}

// Write persists both entries, each valid for ttl.
func (s *Store) Write(rec *Record, ttl time.Duration) error {
	if rec == nil {
		return errors.New("credstore: nil record")
	}
	value, err := encode(rec)
	if err != nil {
		return fmt.Errorf("encode userData: %w", err)
	}
	exp := s.now().Add(ttlOrDefault(ttl))
	err = s.db.SetCookies(
		store.Cookie{Name: UserDataKey, Value: value, Path: "/", SameSite: "Strict", ExpiresAt: exp},
		store.Cookie{Name: AccessTokenKey, Value: rec.AccessToken, Path: "/", SameSite: "Strict", ExpiresAt: exp},
	)
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// WriteToken replaces only the accessToken entry.
func (s *Store) WriteToken(token string, ttl time.Duration) error {
	err := s.db.SetCookie(store.Cookie{
		Name:      AccessTokenKey,
		Value:     token,
		Path:      "/",
		SameSite:  "Strict",
		ExpiresAt: s.now().Add(ttlOrDefault(ttl)),
	})
	if err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes both entries. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := s.db.DeleteCookies(UserDataKey, AccessTokenKey); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *Store) discard(op string, cause error) {
	s.log.Warn("discarding stored credentials", zap.String("op", op), zap.Error(cause))
	if err := s.Clear(); err != nil {
		s.log.Warn("clear after bad entry failed", zap.Error(err))
	}
}

func encode(rec *Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

func decode(value string) (*Record, error) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return nil, err
	}
	var rec *Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	if rec == nil || (rec.ID == "" && rec.Email == "") {
		return nil, errors.New("empty user record")
	}
	return rec, nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
