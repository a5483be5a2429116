// Package session holds the authenticated identity shared by every view.
package session

import (
	"sync/atomic"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

// Store holds at most one session. The zero value holds none and is ready to use.
type Store struct {
	current atomic.Pointer[domain.Session]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current session, or false when nobody is logged in.
func (s *Store) Get() (domain.Session, bool) {
	p := s.current.Load()
	if p == nil {
		return domain.Session{}, false
	}
	return *p, true
}

// Set publishes sess. The value is copied before publication.
func (s *Store) Set(sess domain.Session) {
	published := sess
	s.current.Store(&published)
}

// Clear removes the current session.
func (s *Store) Clear() {
	s.current.Store(nil)
}
