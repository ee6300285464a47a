package source

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/lectern/internal/adapter"
	"github.com/mmcdole/lectern/internal/adapter/source/boltdb"
	"github.com/mmcdole/lectern/internal/adapter/source/rest"
	"github.com/mmcdole/lectern/internal/domain"
)

// Backend combines the repository interfaces a catalog backend must implement.
type Backend interface {
	domain.CourseRepository    // Browsing: ListCourses, ListDivisions, ListContents
	domain.AuthoringRepository // Authoring: CreateCourse, CreateDivision
	domain.SessionRepository   // Session: SignIn, Verify, SignOut
}

// offline pairs a bolt catalog with a local session
type offline struct {
	*boltdb.Catalog
	*boltdb.LocalSession
}

// nopCloser is returned for backends with nothing to release
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open creates the Backend selected by cfg.Server.Type. The closer releases
// any file the backend holds.
func Open(cfg *adapter.Config, logger *slog.Logger) (Backend, io.Closer, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is nil")
	}

	switch cfg.Server.Type {
	case adapter.SourceTypeREST, "":
		if cfg.Server.URL == "" {
			return nil, nil, fmt.Errorf("server URL is required")
		}
		jar, err := rest.NewJar(cfg.Server.URL, adapter.SessionPath())
		if err != nil {
			return nil, nil, err
		}
		client, err := rest.NewClient(cfg.Server.URL, jar, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, nopCloser{}, nil

	case adapter.SourceTypeBolt:
		if cfg.Server.BoltPath == "" {
			return nil, nil, fmt.Errorf("bolt_path is required for the bolt backend")
		}
		catalog, err := boltdb.Open(cfg.Server.BoltPath, logger)
		if err != nil {
			return nil, nil, err
		}
		return offline{Catalog: catalog, LocalSession: boltdb.NewLocalSession(cfg.Server.Email)}, catalog, nil

	default:
		return nil, nil, fmt.Errorf("unknown server type: %s", cfg.Server.Type)
	}
}

// NewAuthFlow creates the sign-in prompt for the configured backend.
// - REST: email and hidden password, checked by the server
// - Bolt: email only, selecting whose offline catalog to browse
func NewAuthFlow(cfg *adapter.Config, auth rest.Authenticator, logger *slog.Logger) domain.AuthFlow {
	flow := rest.NewAuthFlow(auth, cfg.Server.Email, logger)
	flow.SkipPassword = cfg.Server.Type == adapter.SourceTypeBolt
	return flow
}
