package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/lectern/internal/domain"
)

const sessionCookie = "teacher_session"

func newTestClient(t *testing.T, srv *httptest.Server, sessionPath string) *Client {
	t.Helper()
	jar, err := NewJar(srv.URL+"/api", sessionPath)
	require.NoError(t, err)
	c, err := NewClient(srv.URL+"/api", jar, nil)
	require.NoError(t, err)
	c.retryDelay = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeAPI serves a minimal course platform with a cookie session.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	authed := func(r *http.Request) bool {
		c, err := r.Cookie(sessionCookie)
		return err == nil && c.Value == "s3cret"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/teacher/signin", func(w http.ResponseWriter, r *http.Request) {
		var req SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "s3cret", Path: "/"})
		writeJSON(w, SignInResponse{Message: "ok", Teacher: TeacherDTO{Email: req.Email, Name: "Ada"}})
	})
	mux.HandleFunc("GET /api/teacher/verify", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, VerifyResponse{Authenticated: true, Teacher: TeacherDTO{Email: "ada@example.edu", Name: "Ada"}})
	})
	mux.HandleFunc("POST /api/teacher/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, map[string]string{"message": "logged out"})
	})
	mux.HandleFunc("GET /api/teacher/courses", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		thumb := "https://cdn.example.edu/go.png"
		writeJSON(w, []CourseDTO{
			{ID: 2, Name: "Distributed Systems", Price: 0},
			{ID: 1, Name: "Go Fundamentals", Price: 29.99, ThumbnailURL: &thumb},
		})
	})
	mux.HandleFunc("GET /api/teacher/courses/{id}/divisions", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, []DivisionDTO{{ID: 11, Title: "B", Order: 2}, {ID: 10, Title: "A", Order: 1}})
	})
	mux.HandleFunc("POST /api/teacher/courses", func(w http.ResponseWriter, r *http.Request) {
		var req CreateCourseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, CourseDTO{ID: 3, Name: req.Name, Price: req.Price})
	})
	mux.HandleFunc("POST /api/teacher/courses/{id}/divisions", func(w http.ResponseWriter, r *http.Request) {
		var req CreateDivisionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, DivisionDTO{ID: 12, Title: req.Title, Order: req.Order})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SessionLifecycle(t *testing.T) {
	srv := fakeAPI(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	c := newTestClient(t, srv, sessionPath)
	ctx := context.Background()

	_, err := c.Verify(ctx)
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)

	_, err = c.ListCourses(ctx, "ada@example.edu")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)

	res, err := c.SignIn(ctx, "ada@example.edu", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerKey("ada@example.edu"), res.Owner())

	courses, err := c.ListCourses(ctx, res.Owner())
	require.NoError(t, err)
	require.Len(t, courses, 2)

	// a fresh client resumes from the stored cookie
	resumed := newTestClient(t, srv, sessionPath)
	who, err := resumed.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", who.Name)

	require.NoError(t, resumed.SignOut(ctx))
	assert.NoFileExists(t, sessionPath)
	_, err = resumed.Verify(ctx)
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}

func TestClient_SignInRejected(t *testing.T) {
	c := newTestClient(t, fakeAPI(t), "")

	_, err := c.SignIn(context.Background(), "ada@example.edu", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestClient_ListCoursesMapsAndKeepsOrder(t *testing.T) {
	srv := fakeAPI(t)
	c := newTestClient(t, srv, "")
	ctx := context.Background()
	_, err := c.SignIn(ctx, "ada@example.edu", "hunter2")
	require.NoError(t, err)

	courses, err := c.ListCourses(ctx, "ada@example.edu")
	require.NoError(t, err)
	assert.Equal(t, []domain.Course{
		{ID: 2, Name: "Distributed Systems"},
		{ID: 1, Name: "Go Fundamentals", Price: 29.99, ThumbnailURL: "https://cdn.example.edu/go.png"},
	}, courses)
}

func TestClient_ListDivisions(t *testing.T) {
	c := newTestClient(t, fakeAPI(t), "")
	ctx := context.Background()

	divs, err := c.ListDivisions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.Division{{ID: 11, Title: "B", Order: 2}, {ID: 10, Title: "A", Order: 1}}, divs)

	_, err = c.ListDivisions(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestClient_Create(t *testing.T) {
	c := newTestClient(t, fakeAPI(t), "")
	ctx := context.Background()

	course, err := c.CreateCourse(ctx, "ada@example.edu", "Databases", 19.5)
	require.NoError(t, err)
	assert.Equal(t, domain.Course{ID: 3, Name: "Databases", Price: 19.5}, course)

	div, err := c.CreateDivision(ctx, 1, "Indexes", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.Division{ID: 12, Title: "Indexes", Order: 3}, div)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		writeJSON(w, []ContentDTO{{ID: 100, Title: "Intro", Type: "video", Category: "lectures", FileURL: "u"}})
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv, "")

	contents, err := c.ListContents(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	require.Len(t, contents, 1)
	assert.Equal(t, domain.ContentTypeVideo, contents[0].Type)
	assert.Equal(t, domain.CategoryLectures, contents[0].Category)
}

func TestClient_GivesUpAfterMaxTries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv, "")

	_, err := c.ListContents(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(maxTries), hits.Load())
}

func TestClient_WritesAreNotRetried(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
		}
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	_, err := c.CreateCourse(ctx, "ada@example.edu", "Databases", 19.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(1), posts.Load())

	_, err = c.CreateDivision(ctx, 1, "Indexes", 3)
	require.Error(t, err)
	assert.Equal(t, int32(2), posts.Load())

	_, err = c.SignIn(ctx, "ada@example.edu", "hunter2")
	require.Error(t, err)
	assert.Equal(t, int32(3), posts.Load())
}

func TestClient_AuthErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv, "")

	_, err := c.ListCourses(context.Background(), "t1")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_ServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv, "")
	srv.Close()

	_, err := c.ListCourses(context.Background(), "t1")
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestMapContents_DurationOnlyForVideos(t *testing.T) {
	secs := 90
	got := MapContents([]ContentDTO{
		{ID: 1, Type: "VIDEO", Category: "LECTURES", Duration: &secs},
		{ID: 2, Type: "PDF", Category: "NOTES", Duration: &secs},
		{ID: 3, Type: "VIDEO", Category: "RESOURCES"},
	})
	assert.Equal(t, 90, got[0].Duration)
	assert.Zero(t, got[1].Duration)
	assert.Zero(t, got[2].Duration)
}

type stubAuthenticator struct {
	email, password string
}

func (s *stubAuthenticator) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	s.email, s.password = email, password
	return &domain.AuthResult{Email: email}, nil
}

func TestAuthFlow_UsesDefaultEmail(t *testing.T) {
	stub := &stubAuthenticator{}
	flow := NewAuthFlow(stub, "ada@example.edu", nil)
	flow.in = strings.NewReader("\n")
	var out bytes.Buffer
	flow.out = &out
	flow.readPassword = func() ([]byte, error) { return []byte("hunter2"), nil }

	res, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.edu", res.Email)
	assert.Equal(t, "hunter2", stub.password)
	assert.Contains(t, out.String(), "Email [ada@example.edu]")
}

func TestAuthFlow_RequiresEmail(t *testing.T) {
	flow := NewAuthFlow(&stubAuthenticator{}, "", nil)
	flow.in = strings.NewReader("")
	flow.out = &bytes.Buffer{}
	flow.readPassword = func() ([]byte, error) { return nil, nil }

	_, err := flow.Run(context.Background())
	assert.Error(t, err)
}
