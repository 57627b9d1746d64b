package auth

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/credstore"
	"github.com/matheus3301/disa/internal/store"
)

type memStore struct {
	mu       sync.Mutex
	rec      *credstore.Record
	token    string
	writeErr error
	clears   int
}

func (s *memStore) Read() (*credstore.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil || s.token == "" {
		return nil, false
	}
	r := *s.rec
	r.AccessToken = s.token
	return &r, true
}

func (s *memStore) Write(rec *credstore.Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	r := *rec
	s.rec = &r
	s.token = rec.AccessToken
	return nil
}

func (s *memStore) WriteToken(token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec, s.token = nil, ""
	s.clears++
	return nil
}

func user(token string) *credstore.Record {
	return &credstore.Record{ID: "7", Email: "ada@example.com", Name: "Ada", AccessToken: token}
}

func TestLoadAnonymous(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0, nil)
	if !m.State().IsLoading() {
		t.Fatal("new manager should be loading")
	}
	st := m.Load()
	if st.Status != Anonymous || st.IsAuthenticated() {
		t.Errorf("Load() = %+v, want anonymous", st)
	}
}

func TestLoadRestoresSession(t *testing.T) {
	s := &memStore{}
	_ = s.Write(user("tok"), 0)

	m := NewManager(s, nil, 0, nil)
	st := m.Load()
	if st.Status != Authenticated || !st.IsAuthenticated() {
		t.Fatalf("Load() = %+v, want authenticated", st)
	}
	if st.Token != "tok" || st.User.Email != "ada@example.com" {
		t.Errorf("restored state = %+v", st)
	}
}

func TestLoadRunsOnce(t *testing.T) {
	s := &memStore{}
	m := NewManager(s, nil, 0, nil)
	m.Load()

	_ = s.Write(user("late"), 0)
	if st := m.Load(); st.Status != Anonymous {
		t.Errorf("second Load() = %s, want ANONYMOUS (store read only once)", st.Status)
	}
}

func TestLoginBeforeLoadFails(t *testing.T) {
	s := &memStore{}
	m := NewManager(s, nil, 0, nil)

	_, err := m.Login(user("tok"), nil)
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Login() before Load error = %v, want ErrNotLoaded", err)
	}
	if m.State().Status != Unknown {
		t.Errorf("state changed to %s", m.State().Status)
	}
	if _, ok := s.Read(); ok {
		t.Error("store written despite rejected login")
	}
}

func TestLoginCallbackSeesAuthenticated(t *testing.T) {
	s := &memStore{}
	m := NewManager(s, nil, 0, nil)
	m.Load()

	called := false
	st, err := m.Login(user("tok"), func(st State) {
		called = true
		if !st.IsAuthenticated() {
			t.Error("callback state is not authenticated")
		}
		if !m.State().IsAuthenticated() {
			t.Error("manager state is not authenticated inside callback")
		}
		if _, ok := s.Read(); !ok {
			t.Error("store not written before callback")
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("callback not called")
	}
	if st.Token != "tok" || st.User.IssuedAt.IsZero() {
		t.Errorf("Login() state = %+v", st)
	}
}

func TestLoginStoreFailureKeepsState(t *testing.T) {
	s := &memStore{writeErr: errors.New("disk full")}
	m := NewManager(s, nil, 0, nil)
	m.Load()

	called := false
	_, err := m.Login(user("tok"), func(State) { called = true })
	if err == nil {
		t.Fatal("Login() expected error")
	}
	if called {
		t.Error("callback ran after failed login")
	}
	if m.State().Status != Anonymous {
		t.Errorf("state = %s, want ANONYMOUS", m.State().Status)
	}
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0, nil)
	m.Load()
	if _, err := m.Login(user(""), nil); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Login() error = %v, want ErrInvalidRecord", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	s := &memStore{}
	m := NewManager(s, nil, 0, nil)
	m.Load()
	if _, err := m.Login(user("tok"), nil); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := m.Logout(); err != nil {
			t.Fatalf("Logout() #%d error = %v", i+1, err)
		}
		if st := m.State(); st.Status != Anonymous || st.IsAuthenticated() {
			t.Errorf("after Logout #%d state = %+v", i+1, st)
		}
	}
	if _, ok := s.Read(); ok {
		t.Error("store still holds credentials")
	}
}

func TestSetToken(t *testing.T) {
	s := &memStore{}
	m := NewManager(s, nil, 0, nil)
	m.Load()

	if err := m.SetToken("x"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("SetToken() anonymous error = %v, want ErrNotAuthenticated", err)
	}

	if _, err := m.Login(user("tok"), nil); err != nil {
		t.Fatal(err)
	}
	if err := m.SetToken("tok2"); err != nil {
		t.Fatal(err)
	}
	st := m.State()
	if st.Token != "tok2" || st.User.AccessToken != "tok2" {
		t.Errorf("state after SetToken = %+v", st)
	}
	if rec, _ := s.Read(); rec.AccessToken != "tok2" {
		t.Errorf("stored token = %q, want tok2", rec.AccessToken)
	}
}

func TestStateIsSnapshot(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0, nil)
	m.Load()
	if _, err := m.Login(user("tok"), nil); err != nil {
		t.Fatal(err)
	}
	st := m.State()
	st.User.Name = "mutated"
	if m.State().User.Name != "Ada" {
		t.Error("State() exposed internal user record")
	}
}

func TestTransitionsPublishEvents(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	m := NewManager(&memStore{}, b, 0, nil)
	m.Load()
	if _, err := m.Login(user("tok"), nil); err != nil {
		t.Fatal(err)
	}
	if err := m.SetToken("tok2"); err != nil {
		t.Fatal(err)
	}
	if err := m.Logout(); err != nil {
		t.Fatal(err)
	}

	var kinds []string
	for len(ch) > 0 {
		kinds = append(kinds, (<-ch).Kind)
	}
	want := []string{
		bus.KindSessionStatusChanged,
		bus.KindSessionStatusChanged,
		bus.KindSessionAuthenticated,
		bus.KindSessionStatusChanged,
		bus.KindSessionStatusChanged,
	}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestConcurrentReadsDuringLogin(t *testing.T) {
	m := NewManager(&memStore{}, nil, 0, nil)
	m.Load()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				st := m.State()
				if st.Status == Authenticated && !st.IsAuthenticated() {
					t.Error("observed half-written state")
					return
				}
			}
		}()
	}
	if _, err := m.Login(user("tok"), nil); err != nil {
		t.Fatal(err)
	}
	wg.Wait()
}

func TestWithCredentialStore(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "disa.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}

	first := NewManager(credstore.New(db, nil), nil, time.Hour, nil)
	first.Load()
	if _, err := first.Login(user("tok"), nil); err != nil {
		t.Fatal(err)
	}

	// A restarted daemon restores the same session.
	second := NewManager(credstore.New(db, nil), nil, time.Hour, nil)
	st := second.Load()
	if !st.IsAuthenticated() || st.Token != "tok" {
		t.Errorf("restored state = %+v", st)
	}
}
