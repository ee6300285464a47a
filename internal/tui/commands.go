package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/tui/components"
)

// statusTTL is how long a footer status message stays up
const statusTTL = 4 * time.Second

func (m *Model) loadCoursesCmd() tea.Cmd {
	cache, owner := m.cache, m.owner()
	return func() tea.Msg {
		courses, err := cache.Courses(context.Background(), owner)
		return CoursesLoadedMsg{Courses: courses, Err: err}
	}
}

func (m *Model) loadDivisionsCmd(courseID int64) tea.Cmd {
	cache, owner := m.cache, m.owner()
	return func() tea.Msg {
		divs, err := cache.Divisions(context.Background(), owner, courseID)
		return DivisionsLoadedMsg{CourseID: courseID, Divisions: divs, Err: err}
	}
}

func (m *Model) loadContentsCmd(divisionID int64) tea.Cmd {
	cache, owner := m.cache, m.owner()
	return func() tea.Msg {
		contents, err := cache.Contents(context.Background(), owner, divisionID)
		return ContentsLoadedMsg{DivisionID: divisionID, Contents: contents, Err: err}
	}
}

func (m *Model) createCourseCmd(name string, price float64) tea.Cmd {
	svc, owner := m.authoring, m.owner()
	return func() tea.Msg {
		course, err := svc.CreateCourse(context.Background(), owner, name, price)
		return CourseCreatedMsg{Course: course, Err: err}
	}
}

func (m *Model) createDivisionCmd(courseID int64, title string, order int) tea.Cmd {
	svc, owner := m.authoring, m.owner()
	return func() tea.Msg {
		div, err := svc.CreateDivision(context.Background(), owner, courseID, title, order)
		return DivisionCreatedMsg{CourseID: courseID, Division: div, Err: err}
	}
}

func (m *Model) openContentCmd(content domain.Content) tea.Cmd {
	opener := m.opener
	return func() tea.Msg {
		return ContentOpenedMsg{Content: content, Err: opener.Open(content)}
	}
}

func (m *Model) searchCmd(query string) tea.Cmd {
	svc, owner := m.search, m.owner()
	return func() tea.Msg {
		return SearchResultsMsg{Query: query, Results: svc.Search(owner, query)}
	}
}

func (m *Model) signOutCmd() tea.Cmd {
	svc := m.session
	return func() tea.Msg {
		return SignedOutMsg{Err: svc.SignOut(context.Background())}
	}
}

// waitForProgress blocks until the next population update
func waitForProgress(ch <-chan domain.PopulateProgress) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg{Progress: <-ch}
	}
}

func clearStatusAfter(id int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// toItems converts a typed slice to list items
func toItems[T domain.ListItem](in []T) []domain.ListItem {
	out := make([]domain.ListItem, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// loadCmdFor reloads the given column from the cache
func (m *Model) loadCmdFor(col *components.ListColumn) tea.Cmd {
	switch col.ColumnType() {
	case components.ColumnTypeCourses:
		return m.loadCoursesCmd()
	case components.ColumnTypeDivisions:
		return m.loadDivisionsCmd(col.ParentID())
	case components.ColumnTypeContents:
		return m.loadContentsCmd(col.ParentID())
	default:
		return nil
	}
}
