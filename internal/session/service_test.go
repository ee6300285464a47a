package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/lectern/internal/adapter"
	"github.com/mmcdole/lectern/internal/catalog"
	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/store"
)

// fakeBackend serves one course and records sign-outs.
type fakeBackend struct {
	mu        sync.Mutex
	verified  *domain.AuthResult
	verifyErr error
	signOuts  int
	lists     int
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if password != "hunter2" {
		return nil, domain.ErrAuthFailed
	}
	return &domain.AuthResult{Email: email, Name: "Ada"}, nil
}

func (f *fakeBackend) Verify(ctx context.Context) (*domain.AuthResult, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verified, nil
}

func (f *fakeBackend) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return nil
}

func (f *fakeBackend) ListCourses(ctx context.Context, owner domain.OwnerKey) ([]domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return []domain.Course{{ID: 1, Name: "Go Fundamentals"}}, nil
}

func (f *fakeBackend) ListDivisions(ctx context.Context, courseID int64) ([]domain.Division, error) {
	return []domain.Division{}, nil
}

func (f *fakeBackend) ListContents(ctx context.Context, divisionID int64) ([]domain.Content, error) {
	return []domain.Content{}, nil
}

func newService(backend *fakeBackend, warm bool) (*Service, *store.MemoryStore) {
	st := store.New()
	cache := catalog.NewCache(backend, st, catalog.Options{}, adapter.NullLogger())
	return NewService(backend, cache, warm, adapter.NullLogger()), st
}

func TestSignIn_SetsOwnerAndWarms(t *testing.T) {
	backend := &fakeBackend{}
	svc, st := newService(backend, true)

	res, err := svc.SignIn(context.Background(), "Ada@Example.edu", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerKey("ada@example.edu"), res.Owner())
	assert.Equal(t, res.Owner(), svc.Owner())

	assert.Eventually(t, func() bool { return st.Populated("ada@example.edu") },
		time.Second, 5*time.Millisecond)
}

func TestSignIn_Rejected(t *testing.T) {
	svc, _ := newService(&fakeBackend{}, false)

	_, err := svc.SignIn(context.Background(), "ada@example.edu", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	_, ok := svc.Current()
	assert.False(t, ok)
	assert.Empty(t, svc.Owner())
}

func TestResume(t *testing.T) {
	backend := &fakeBackend{verified: &domain.AuthResult{Email: "ada@example.edu"}}
	svc, st := newService(backend, false)

	res, err := svc.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerKey("ada@example.edu"), res.Owner())

	// warm-up disabled
	assert.False(t, st.Populated("ada@example.edu"))
}

func TestResume_ExpiredSession(t *testing.T) {
	svc, _ := newService(&fakeBackend{verifyErr: domain.ErrAuthFailed}, false)

	_, err := svc.Resume(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}

func TestResume_ServerOffline(t *testing.T) {
	offline := errors.Join(domain.ErrServerOffline)
	svc, _ := newService(&fakeBackend{verifyErr: offline}, false)

	_, err := svc.Resume(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestSignOut_DropsCache(t *testing.T) {
	backend := &fakeBackend{}
	svc, st := newService(backend, false)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "ada@example.edu", "hunter2")
	require.NoError(t, err)
	_, err = svc.cache.Courses(ctx, svc.Owner())
	require.NoError(t, err)
	require.True(t, st.Populated("ada@example.edu"))

	require.NoError(t, svc.SignOut(ctx))
	assert.Equal(t, 1, backend.signOuts)
	_, exists := st.Get("ada@example.edu")
	assert.False(t, exists)
	assert.Empty(t, svc.Owner())
}
