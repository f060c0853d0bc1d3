package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fridaykickers/kickers/pkg/store"
)

// ErrNoToken is returned by Session.Login when the token is empty.
var ErrNoToken = errors.New("auth: empty token")

// TokenStore persists the bearer token.
type TokenStore interface {
	// Token returns the stored token, or "" when none is stored.
	Token() string
	SetToken(token string) error
	RemoveToken() error
}

// MemoryTokens is an in-process TokenStore.
type MemoryTokens struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokens creates a MemoryTokens holding token.
func NewMemoryTokens(token string) *MemoryTokens {
	return &MemoryTokens{token: token}
}

func (m *MemoryTokens) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) RemoveToken() error {
	return m.SetToken("")
}

// FileTokens stores the token in a file readable only by the owner.
type FileTokens struct {
	path string
	mu   sync.Mutex
}

// NewFileTokens creates a FileTokens backed by path.
func NewFileTokens(path string) *FileTokens {
	return &FileTokens{path: path}
}

// Token returns the token stored in the file. A missing or unreadable file
// reads as no token.
func (f *FileTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (f *FileTokens) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("auth: create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("auth: write token: %w", err)
	}
	return nil
}

func (f *FileTokens) RemoveToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("auth: remove token: %w", err)
	}
	return nil
}

// State is the authentication state observed by views.
type State struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"-"`
	Loading       bool   `json:"loading"`
	Initialized   bool   `json:"initialized"`
}

// Session combines a TokenStore with observable State.
type Session struct {
	tokens TokenStore
	state  *store.Store[State]
}

// NewSession creates a Session over tokens. Call Initialize to pick up a
// token persisted by an earlier run.
func NewSession(tokens TokenStore) *Session {
	return &Session{
		tokens: tokens,
		state:  store.New(State{}),
	}
}

// Tokens returns the underlying token store.
func (s *Session) Tokens() TokenStore { return s.tokens }

// State returns the current state.
func (s *Session) State() State { return s.state.Get() }

// Subscribe registers fn for state changes.
func (s *Session) Subscribe(fn func(State)) func() { return s.state.Subscribe(fn) }

// Initialize loads the persisted token, if any, and marks the state initialized.
func (s *Session) Initialize() {
	token := s.tokens.Token()
	s.state.Update(func(st State) State {
		if token != "" {
			st.Authenticated = true
			st.Token = token
		}
		st.Initialized = true
		return st
	})
}

// Login persists token and marks the session authenticated.
func (s *Session) Login(token string) error {
	if token == "" {
		return ErrNoToken
	}
	if err := s.tokens.SetToken(token); err != nil {
		return err
	}
	s.state.Update(func(st State) State {
		st.Authenticated = true
		st.Token = token
		st.Initialized = true
		return st
	})
	return nil
}

// Logout removes the token and resets the state. The state is reset even
// when the token store fails; the error is returned for logging.
func (s *Session) Logout() error {
	err := s.tokens.RemoveToken()
	s.state.Set(State{Initialized: true})
	return err
}

// SetLoading toggles the loading flag.
func (s *Session) SetLoading(loading bool) {
	s.state.Update(func(st State) State {
		st.Loading = loading
		return st
	})
}

// Valid reports whether the session is authenticated and holds a token.
func (s *Session) Valid() bool {
	st := s.state.Get()
	return st.Authenticated && st.Token != ""
}
