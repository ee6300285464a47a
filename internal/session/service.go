package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/lectern/internal/catalog"
	"github.com/mmcdole/lectern/internal/domain"
)

// Service tracks which teacher is signed in and ties the cache lifetime to
// the session.
type Service struct {
	repo   domain.SessionRepository
	cache  *catalog.Cache
	warm   bool
	logger *slog.Logger

	mu      sync.RWMutex
	current *domain.AuthResult
}

// NewService creates a session service. When warm is set, a successful
// sign-in starts populating the teacher's cache in the background.
func NewService(repo domain.SessionRepository, cache *catalog.Cache, warm bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, warm: warm, logger: logger}
}

// SignIn implements rest.Authenticator so the terminal prompt can drive it.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	res, err := s.repo.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.begin(ctx, res)
	return res, nil
}

// Resume picks up a session left over from a previous run.
// Returns domain.ErrNotSignedIn when there is none.
func (s *Service) Resume(ctx context.Context) (*domain.AuthResult, error) {
	res, err := s.repo.Verify(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			err = domain.ErrNotSignedIn
		}
		return nil, err
	}
	s.begin(ctx, res)
	return res, nil
}

func (s *Service) begin(ctx context.Context, res *domain.AuthResult) {
	s.mu.Lock()
	s.current = res
	s.mu.Unlock()

	s.logger.Info("session started", "owner", res.Owner())
	if s.warm {
		s.cache.Warm(ctx, res.Owner())
	}
}

// Current returns the signed-in teacher, if any.
func (s *Service) Current() (*domain.AuthResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Owner returns the cache owner key of the signed-in teacher, or "" when
// signed out.
func (s *Service) Owner() domain.OwnerKey {
	if cur, ok := s.Current(); ok {
		return cur.Owner()
	}
	return ""
}

// SignOut ends the backend session and drops the teacher's cache. The cache
// is dropped even when the backend call fails.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	cur := s.current
	s.current = nil
	s.mu.Unlock()

	err := s.repo.SignOut(ctx)
	if err != nil {
		s.logger.Warn("backend sign out failed", "error", err)
	}
	if cur != nil {
		s.cache.InvalidateAll(cur.Owner())
		s.logger.Info("session ended", "owner", cur.Owner())
	}
	return err
}
