package client

import (
	"sync"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// Session holds the bearer token and the identity it was issued for.
type Session struct {
	mu       sync.RWMutex
	token    string
	userName string
	role     domain.Role
}

// NewSession returns a session, authenticated when token is non-empty.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Set stores a freshly issued token.
func (s *Session) Set(token, userName string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userName = userName
	s.role = role
}

// Clear drops the token, e.g. after the server answers 401.
func (s *Session) Clear() {
	s.Set("", "", "")
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

func (s *Session) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
