package tui

import (
	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/search"
)

// Message types for the TUI

// CoursesLoadedMsg carries the result of a course read
type CoursesLoadedMsg struct {
	Courses []domain.Course
	Err     error
}

// DivisionsLoadedMsg carries the result of a division read
type DivisionsLoadedMsg struct {
	CourseID  int64
	Divisions []domain.Division
	Err       error
}

// ContentsLoadedMsg carries the result of a content read
type ContentsLoadedMsg struct {
	DivisionID int64
	Contents   []domain.Content
	Err        error
}

// ProgressMsg wraps a population progress update
type ProgressMsg struct {
	Progress domain.PopulateProgress
}

// CourseCreatedMsg signals the result of creating a course
type CourseCreatedMsg struct {
	Course domain.Course
	Err    error
}

// DivisionCreatedMsg signals the result of creating a division
type DivisionCreatedMsg struct {
	CourseID int64
	Division domain.Division
	Err      error
}

// ContentOpenedMsg signals that a viewer was launched
type ContentOpenedMsg struct {
	Content domain.Content
	Err     error
}

// SearchResultsMsg carries ranked hits for a query
type SearchResultsMsg struct {
	Query   string
	Results []search.Result
}

// SignedOutMsg signals that the session ended
type SignedOutMsg struct {
	Err error
}

// clearStatusMsg clears the footer status if it is still the one with id
type clearStatusMsg struct {
	id int
}
