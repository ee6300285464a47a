package domain

import (
	"context"
)

// CourseRepository provides read access to a teacher's catalog.
// The cache never talks to the network except through this interface.
type CourseRepository interface {
	// ListCourses returns every course owned by the teacher
	ListCourses(ctx context.Context, owner OwnerKey) ([]Course, error)

	// ListDivisions returns the divisions of a course in backend order
	ListDivisions(ctx context.Context, courseID int64) ([]Division, error)

	// ListContents returns the contents of a division in backend order
	ListContents(ctx context.Context, divisionID int64) ([]Content, error)
}

// AuthoringRepository creates catalog entries on the backend
type AuthoringRepository interface {
	// CreateCourse creates a course and returns it with its assigned ID
	CreateCourse(ctx context.Context, owner OwnerKey, name string, price float64) (Course, error)

	// CreateDivision adds a division to a course
	CreateDivision(ctx context.Context, courseID int64, title string, order int) (Division, error)
}

// SessionRepository manages the teacher's authenticated session
type SessionRepository interface {
	// SignIn authenticates with email and password
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)

	// Verify checks the current session and returns who it belongs to
	Verify(ctx context.Context) (*AuthResult, error)

	// SignOut ends the session on the backend
	SignOut(ctx context.Context) error
}

// AuthResult contains the result of a successful authentication
type AuthResult struct {
	Email string // Teacher email, used as the cache owner key
	Name  string // Display name
}

// Owner returns the cache owner key for this session
func (r AuthResult) Owner() OwnerKey {
	return OwnerKey(r.Email).Normalize()
}

// AuthFlow collects credentials interactively and signs in.
type AuthFlow interface {
	Run(ctx context.Context) (*AuthResult, error)
}
