package boltdb

import (
	"context"
	"strings"
	"sync"

	"github.com/mmcdole/lectern/internal/domain"
)

// LocalSession is the session for an offline catalog. There is no server to
// check a password against, so signing in only records which teacher's
// catalog to browse.
type LocalSession struct {
	mu    sync.Mutex
	email string
}

// NewLocalSession creates a session, already signed in when email is set.
func NewLocalSession(email string) *LocalSession {
	return &LocalSession{email: strings.TrimSpace(email)}
}

func (s *LocalSession) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrInvalidOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	return &domain.AuthResult{Email: email}, nil
}

func (s *LocalSession) Verify(ctx context.Context) (*domain.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.email == "" {
		return nil, domain.ErrNotSignedIn
	}
	return &domain.AuthResult{Email: s.email}, nil
}

func (s *LocalSession) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = ""
	return nil
}
