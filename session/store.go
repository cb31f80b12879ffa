// Package session holds the in-memory session state shared by both
// frontends and mirrors the token pair to durable storage on every
// mutation, so a restart can reconstruct the session before any network
// call happens.
package session

import (
	"sync"

	"logdeck/api"
)

// Persister is the durable storage backing the token pair. Implemented by
// the db package's SQLite store.
type Persister interface {
	SaveTokens(access, refresh string) error
	LoadTokens() (access, refresh string, err error)
	ClearTokens() error
}

// Store owns the session: the current user and token pair. All mutations
// are mutex-guarded and last-write-wins; subscribers fire after every
// mutation so the route guard re-evaluates.
type Store struct {
	mu       sync.Mutex
	user     *api.User
	access   string
	refresh  string
	persist  Persister
	watchers []func()
}

// NewStore creates a session store backed by the given persister, which
// may be nil for tests that do not exercise durability.
func NewStore(persist Persister) *Store {
	return &Store{persist: persist}
}

// SetAuth replaces the whole session at once. The user is non-nil exactly
// when both tokens are set; partial state is never stored. Tokens are
// mirrored to durable storage before subscribers run.
func (s *Store) SetAuth(user *api.User, access, refresh string) error {
	s.mu.Lock()
	if user == nil || access == "" || refresh == "" {
		s.user = nil
		s.access = ""
		s.refresh = ""
	} else {
		s.user = user
		s.access = access
		s.refresh = refresh
	}
	err := s.mirrorLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// ClearAuth drops the session and removes the persisted tokens. Safe to
// call when no session exists.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	s.user = nil
	s.access = ""
	s.refresh = ""
	var err error
	if s.persist != nil {
		err = s.persist.ClearTokens()
	}
	s.mu.Unlock()

	s.notify()
	return err
}

// RotateAccessToken swaps in a refreshed access token, keeping the user
// and refresh token. Used as the API client's refresh hook.
func (s *Store) RotateAccessToken(access string) error {
	s.mu.Lock()
	if s.access == "" || access == "" {
		s.mu.Unlock()
		return nil
	}
	s.access = access
	err := s.mirrorLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// Authenticated reports whether a full session is present. Token expiry
// is the auth controller's concern, not checked here.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.access != ""
}

// User returns the current user, or nil.
func (s *Store) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Tokens returns the current token pair. Satisfies api.TokenSource.
func (s *Store) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.refresh
}

// PersistedTokens reads the token pair from durable storage. Used by the
// boot reconciliation before any in-memory session exists.
func (s *Store) PersistedTokens() (access, refresh string, err error) {
	if s.persist == nil {
		return "", "", nil
	}
	return s.persist.LoadTokens()
}

// Subscribe registers a callback invoked after every session mutation.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

func (s *Store) mirrorLocked() error {
	if s.persist == nil {
		return nil
	}
	if s.access == "" {
		return s.persist.ClearTokens()
	}
	return s.persist.SaveTokens(s.access, s.refresh)
}

func (s *Store) notify() {
	s.mu.Lock()
	watchers := make([]func(), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
}
