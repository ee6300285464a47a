package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the course backend is unreachable
	ErrServerOffline = errors.New("course server is unreachable")

	// ErrAuthFailed indicates the session is missing, expired or rejected
	ErrAuthFailed = errors.New("authentication failed")

	// ErrCourseNotFound indicates the requested course does not exist
	ErrCourseNotFound = errors.New("course not found")

	// ErrDivisionNotFound indicates the requested division does not exist
	ErrDivisionNotFound = errors.New("division not found")

	// ErrNotSignedIn indicates an operation needs a signed-in teacher
	ErrNotSignedIn = errors.New("not signed in")

	// ErrInvalidOwner indicates an empty owner key was used
	ErrInvalidOwner = errors.New("owner key is empty")
)
