package auth

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/credstore"
)

var (
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotLoaded is returned when the session is used before Load.
	ErrNotLoaded = errors.New("session not loaded")
	// ErrInvalidRecord is returned when Login gets a record without an access token.
	ErrInvalidRecord = errors.New("credential record has no access token")
)

// CredentialStore is the persistence the Manager drives.
type CredentialStore interface {
	Read() (*credstore.Record, bool)
	Write(rec *credstore.Record, ttl time.Duration) error
	WriteToken(token string, ttl time.Duration) error
	Clear() error
}

// Manager owns the in-memory session and is the only writer of the
// credential store.
type Manager struct {
	mu     sync.RWMutex
	state  State
	loaded bool

	creds CredentialStore
	bus   *bus.Bus
	ttl   time.Duration
	log   *zap.Logger
}

// NewManager creates a Manager in the Unknown status.
func NewManager(creds CredentialStore, b *bus.Bus, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		state: State{Status: Unknown},
		creds: creds,
		bus:   b,
		ttl:   ttl,
		log:   log,
	}
}

// State returns a snapshot of the current session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Load restores the session from the credential store. Only the first call
// reads the store; later calls return the current state.
func (m *Manager) Load() State {
	m.mu.Lock()
	if m.loaded {
		st := m.state.clone()
		m.mu.Unlock()
		return st
	}
	m.loaded = true

	next := State{Status: Anonymous}
	if rec, ok := m.creds.Read(); ok && rec.AccessToken != "" {
		next = State{Status: Authenticated, User: rec, Token: rec.AccessToken}
	}
	from := m.swap(next)
	st := m.state.clone()
	m.mu.Unlock()

	m.log.Info("session loaded", zap.String("status", string(st.Status)))
	m.publishChange(from, st.Status)
	return st
}

// Login persists rec, makes it the current session, then calls onCommitted
// with the new state. onCommitted always observes an authenticated state.
func (m *Manager) Login(rec *credstore.Record, onCommitted func(State)) (State, error) {
	if rec == nil || rec.AccessToken == "" {
		return m.State(), ErrInvalidRecord
	}

	m.mu.Lock()
	if err := m.checkTransition(Authenticated); err != nil {
		st := m.state.clone()
		m.mu.Unlock()
		return st, err
	}
	stored := *rec
	if stored.IssuedAt.IsZero() {
		stored.IssuedAt = time.Now().UTC()
	}
	if err := m.creds.Write(&stored, m.ttl); err != nil {
		st := m.state.clone()
		m.mu.Unlock()
		return st, fmt.Errorf("persist credentials: %w", err)
	}
	from := m.swap(State{Status: Authenticated, User: &stored, Token: stored.AccessToken})
	st := m.state.clone()
	m.mu.Unlock()

	m.log.Info("signed in", zap.String("user_id", stored.ID))
	m.publishChange(from, Authenticated)
	m.bus.Emit(bus.KindSessionAuthenticated, stored.ID)
	if onCommitted != nil {
		onCommitted(st)
	}
	return st, nil
}

// Logout clears the credential store and drops the in-memory session.
// Logging out while anonymous is a no-op apart from clearing the store.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.loaded = true
	clearErr := m.creds.Clear()
	from := m.swap(State{Status: Anonymous})
	m.mu.Unlock()

	if from != Anonymous {
		m.log.Info("signed out")
		m.publishChange(from, Anonymous)
	}
	if clearErr != nil {
		return fmt.Errorf("clear credentials: %w", clearErr)
	}
	return nil
}

// SetToken replaces the bearer token of the current session. Cached data
// is keyed by token, so the change is published like any other transition.
func (m *Manager) SetToken(token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	m.mu.Lock()
	if !m.state.IsAuthenticated() {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	if err := m.creds.WriteToken(token, m.ttl); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist token: %w", err)
	}
	user := *m.state.User
	user.AccessToken = token
	from := m.swap(State{Status: Authenticated, User: &user, Token: token})
	m.mu.Unlock()

	m.log.Info("access token rotated", zap.Int("token_len", len(token)))
	m.publishChange(from, Authenticated)
	return nil
}

func (m *Manager) checkTransition(to Status) error {
	if m.state.Status == Unknown && !m.loaded {
		return ErrNotLoaded
	}
	if !slices.Contains(validTransitions[m.state.Status], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.state.Status, to)
	}
	return nil
}

// swap replaces the state and returns the previous status. Caller holds mu.
func (m *Manager) swap(next State) Status {
	from := m.state.Status
	m.state = next
	return from
}

func (m *Manager) publishChange(from, to Status) {
	m.bus.Emit(bus.KindSessionStatusChanged, bus.StatusChange{From: string(from), To: string(to)})
}
