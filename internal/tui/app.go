package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/lectern/internal/authoring"
	"github.com/mmcdole/lectern/internal/catalog"
	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/search"
	"github.com/mmcdole/lectern/internal/session"
	"github.com/mmcdole/lectern/internal/tui/components"
	"github.com/mmcdole/lectern/internal/tui/styles"
)

// Opener launches a viewer for a content item
type Opener interface {
	Open(content domain.Content) error
}

// Deps are the services the browser drives
type Deps struct {
	Cache     *catalog.Cache
	Authoring *authoring.Service
	Session   *session.Service
	Search    *search.Service
	Opener    Opener
	Logger    *slog.Logger
}

// formKind says what the open form modal is for
type formKind int

const (
	formNone formKind = iota
	formNewCourse
	formNewDivision
	formSearch
)

// jumpTarget is a search hit being navigated to across async loads
type jumpTarget struct {
	loc    search.Location
	target components.ColumnType // column the hit lives in
	id     string
}

// pendingSelect moves the cursor to id once the column's next load lands
type pendingSelect struct {
	colType  components.ColumnType
	parentID int64
	id       string
}

// Model is the main Bubble Tea model for the catalog browser
type Model struct {
	cache     *catalog.Cache
	authoring *authoring.Service
	session   *session.Service
	search    *search.Service
	opener    Opener
	logger    *slog.Logger

	keys    KeyMap
	Columns *ColumnStack
	Form    components.FormModal
	form    formKind
	spinner spinner.Model

	progressCh chan domain.PopulateProgress
	progress   *domain.PopulateProgress // nil when no cycle is reporting

	// search hit locations keyed by itemKey
	searchHits map[string]search.Location
	jump       *jumpTarget
	selectNext *pendingSelect

	status        string
	statusIsError bool
	statusID      int

	confirmLogout bool
	SignedOut     bool

	Width  int
	Height int
}

// NewModel creates the browser and subscribes it to population progress.
func NewModel(deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	m := &Model{
		cache:      deps.Cache,
		authoring:  deps.Authoring,
		session:    deps.Session,
		search:     deps.Search,
		opener:     deps.Opener,
		logger:     logger,
		keys:       DefaultKeyMap(),
		Columns:    NewColumnStack(),
		Form:       components.NewFormModal(),
		spinner:    sp,
		progressCh: make(chan domain.PopulateProgress, 64),
	}
	m.Columns.Reset(components.NewListColumn(components.ColumnTypeCourses, "Courses", 0))
	deps.Cache.AddObserver(NewChannelObserver(m.progressCh))
	return m
}

func (m *Model) owner() domain.OwnerKey {
	return m.session.Owner()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCoursesCmd(), waitForProgress(m.progressCh))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.updateLayout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		frame := m.spinner.View()
		m.Columns.Each(func(c *components.ListColumn) { c.SetSpinner(frame) })
		return m, cmd

	case ProgressMsg:
		m.handleProgress(msg.Progress)
		return m, waitForProgress(m.progressCh)

	case CoursesLoadedMsg:
		return m, m.handleCourses(msg)

	case DivisionsLoadedMsg:
		return m, m.handleDivisions(msg)

	case ContentsLoadedMsg:
		return m, m.handleContents(msg)

	case CourseCreatedMsg:
		if msg.Err != nil {
			return m, m.setError("create course", msg.Err)
		}
		m.selectNext = &pendingSelect{colType: components.ColumnTypeCourses, id: msg.Course.GetID()}
		return m, tea.Batch(m.setStatus("Created course "+msg.Course.Name), m.loadCoursesCmd())

	case DivisionCreatedMsg:
		if msg.Err != nil {
			return m, m.setError("create division", msg.Err)
		}
		var cmds []tea.Cmd
		cmds = append(cmds, m.setStatus("Created division "+msg.Division.Title))
		if col := m.Columns.Find(components.ColumnTypeDivisions, msg.CourseID); col != nil {
			col.SetLoading(true)
			m.selectNext = &pendingSelect{colType: components.ColumnTypeDivisions, parentID: msg.CourseID, id: msg.Division.GetID()}
			cmds = append(cmds, m.loadDivisionsCmd(msg.CourseID))
		}
		return m, tea.Batch(cmds...)

	case ContentOpenedMsg:
		if msg.Err != nil {
			return m, m.setError("open "+msg.Content.Title, msg.Err)
		}
		return m, m.setStatus("Opened " + msg.Content.Title)

	case SearchResultsMsg:
		m.showSearchResults(msg)
		return m, nil

	case SignedOutMsg:
		if msg.Err != nil {
			m.logger.Warn("sign out reported an error", "error", msg.Err)
		}
		m.SignedOut = true
		return m, tea.Quit

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusIsError = false
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

// === Loads ===

func (m *Model) handleProgress(p domain.PopulateProgress) {
	if p.Owner != m.owner() {
		return
	}
	if p.Done {
		m.progress = nil
		return
	}
	m.progress = &p
}

func (m *Model) handleCourses(msg CoursesLoadedMsg) tea.Cmd {
	col := m.Columns.Find(components.ColumnTypeCourses, 0)
	if col == nil {
		return nil
	}
	if msg.Err != nil {
		col.SetError(msg.Err)
		return m.setError("load courses", msg.Err)
	}
	col.SetItems(toItems(msg.Courses))
	m.applySelect(col)
	return nil
}

func (m *Model) handleDivisions(msg DivisionsLoadedMsg) tea.Cmd {
	col := m.Columns.Find(components.ColumnTypeDivisions, msg.CourseID)
	if col == nil {
		return nil
	}
	if msg.Err != nil {
		col.SetError(msg.Err)
		m.jump = nil
		return m.setError("load divisions", msg.Err)
	}
	col.SetItems(toItems(msg.Divisions))
	m.applySelect(col)

	j := m.jump
	if j == nil || j.loc.CourseID != msg.CourseID || m.Columns.Top() != col {
		return nil
	}
	m.jump = nil
	if j.target == components.ColumnTypeDivisions {
		col.SelectID(j.id)
		return nil
	}
	if !col.SelectID(strconv.FormatInt(j.loc.DivisionID, 10)) {
		return nil
	}
	m.selectNext = &pendingSelect{colType: components.ColumnTypeContents, parentID: j.loc.DivisionID, id: j.id}
	return m.drill()
}

func (m *Model) handleContents(msg ContentsLoadedMsg) tea.Cmd {
	col := m.Columns.Find(components.ColumnTypeContents, msg.DivisionID)
	if col == nil {
		return nil
	}
	if msg.Err != nil {
		col.SetError(msg.Err)
		return m.setError("load contents", msg.Err)
	}
	col.SetItems(toItems(msg.Contents))
	m.applySelect(col)
	return nil
}

func (m *Model) applySelect(col *components.ListColumn) {
	s := m.selectNext
	if s == nil || s.colType != col.ColumnType() || s.parentID != col.ParentID() {
		return
	}
	col.SelectID(s.id)
	m.selectNext = nil
}

// === Keys ===

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.Form.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.Form, cmd, submitted = m.Form.Update(msg)
		if submitted {
			return m.submitForm()
		}
		return cmd
	}

	if m.confirmLogout {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirmLogout = false
			return m.signOutCmd()
		case key.Matches(msg, m.keys.Deny):
			m.confirmLogout = false
		}
		return nil
	}

	top := m.Columns.Top()
	if top.IsFilterTyping() {
		return top.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Escape):
		if top.IsFiltering() {
			top.ClearFilter()
		} else if top.ColumnType() == components.ColumnTypeSearch {
			m.Columns.Pop()
			m.updateLayout()
		}
		return nil
	case key.Matches(msg, m.keys.Filter):
		top.ToggleFilter()
		return nil
	case key.Matches(msg, m.keys.Search):
		m.openForm(formSearch, "Search catalog", components.FormField{Label: "Query", Placeholder: "course, division or content"})
		return nil
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshFocused()
	case key.Matches(msg, m.keys.RefreshAll):
		return m.refreshAll()
	case key.Matches(msg, m.keys.New):
		return m.newEntry()
	case key.Matches(msg, m.keys.Logout):
		m.confirmLogout = true
		return nil
	case key.Matches(msg, m.keys.Enter):
		return m.activate()
	case key.Matches(msg, m.keys.Right):
		return m.drill()
	case key.Matches(msg, m.keys.Back):
		m.Columns.Pop()
		m.updateLayout()
		return nil
	}
	return top.Update(msg)
}

// drill pushes the child column of the selected course or division
func (m *Model) drill() tea.Cmd {
	top := m.Columns.Top()
	switch item := top.SelectedItem().(type) {
	case domain.Course:
		m.push(components.NewListColumn(components.ColumnTypeDivisions, item.Name, item.ID))
		return m.loadDivisionsCmd(item.ID)
	case domain.Division:
		m.push(components.NewListColumn(components.ColumnTypeContents, item.Title, item.ID))
		return m.loadContentsCmd(item.ID)
	}
	return nil
}

// activate drills into containers, opens content and follows search hits
func (m *Model) activate() tea.Cmd {
	top := m.Columns.Top()
	item := top.SelectedItem()
	if item == nil {
		return nil
	}
	if top.ColumnType() == components.ColumnTypeSearch {
		return m.followHit(item)
	}
	if content, ok := item.(domain.Content); ok {
		return m.openContentCmd(content)
	}
	return m.drill()
}

func (m *Model) push(col *components.ListColumn) {
	col.SetSpinner(m.spinner.View())
	m.Columns.Push(col)
	m.updateLayout()
}

func (m *Model) refreshFocused() tea.Cmd {
	top := m.Columns.Top()
	owner := m.owner()
	switch top.ColumnType() {
	case components.ColumnTypeCourses:
		return m.refreshAll()
	case components.ColumnTypeDivisions:
		m.cache.Invalidate(owner, catalog.ScopeDivisions(top.ParentID()))
	case components.ColumnTypeContents:
		m.cache.Invalidate(owner, catalog.ScopeContents(top.ParentID()))
	default:
		return nil
	}
	top.SetLoading(true)
	return tea.Batch(m.setStatus("Refreshing "+top.Title()), m.loadCmdFor(top))
}

func (m *Model) refreshAll() tea.Cmd {
	m.cache.InvalidateAll(m.owner())
	m.jump = nil
	m.Columns.Reset(components.NewListColumn(components.ColumnTypeCourses, "Courses", 0))
	m.updateLayout()
	return tea.Batch(m.setStatus("Refreshing catalog"), m.loadCoursesCmd())
}

// === Forms ===

func (m *Model) openForm(kind formKind, title string, fields ...components.FormField) {
	m.form = kind
	m.Form.Show(title, fields...)
}

func (m *Model) newEntry() tea.Cmd {
	top := m.Columns.Top()
	switch top.ColumnType() {
	case components.ColumnTypeCourses:
		m.openForm(formNewCourse, "New course",
			components.FormField{Label: "Name", Placeholder: "Course name"},
			components.FormField{Label: "Price", Placeholder: "0.00", CharLimit: 10},
		)
	case components.ColumnTypeDivisions:
		m.openForm(formNewDivision, "New division in "+top.Title(),
			components.FormField{Label: "Title", Placeholder: "Division title"},
			components.FormField{Label: "Order", Value: strconv.Itoa(len(top.Items()) + 1), CharLimit: 4},
		)
	default:
		return m.setStatus("Contents can't be created here")
	}
	return nil
}

func (m *Model) submitForm() tea.Cmd {
	values := m.Form.Values()
	switch m.form {
	case formNewCourse:
		name := strings.TrimSpace(values[0])
		price := 0.0
		if raw := strings.TrimSpace(values[1]); raw != "" {
			p, err := strconv.ParseFloat(raw, 64)
			if err != nil || p < 0 {
				m.Form.SetError("Price must be a non-negative number")
				return nil
			}
			price = p
		}
		if name == "" {
			m.Form.SetError("Name is required")
			return nil
		}
		m.Form.Hide()
		return m.createCourseCmd(name, price)

	case formNewDivision:
		title := strings.TrimSpace(values[0])
		order, err := strconv.Atoi(strings.TrimSpace(values[1]))
		if err != nil {
			m.Form.SetError("Order must be a whole number")
			return nil
		}
		if title == "" {
			m.Form.SetError("Title is required")
			return nil
		}
		courseID := m.Columns.Top().ParentID()
		m.Form.Hide()
		return m.createDivisionCmd(courseID, title, order)

	case formSearch:
		query := strings.TrimSpace(values[0])
		m.Form.Hide()
		if query == "" {
			return nil
		}
		return m.searchCmd(query)
	}
	m.Form.Hide()
	return nil
}

// === Search ===

func itemKey(item domain.ListItem) string {
	return item.GetItemType() + ":" + item.GetID()
}

func (m *Model) showSearchResults(msg SearchResultsMsg) {
	items := make([]domain.ListItem, len(msg.Results))
	m.searchHits = make(map[string]search.Location, len(msg.Results))
	for i, r := range msg.Results {
		items[i] = r.Item
		m.searchHits[itemKey(r.Item)] = r.Location
	}

	col := components.NewListColumn(components.ColumnTypeSearch, fmt.Sprintf("Search: %s (%d)", msg.Query, len(items)), 0)
	col.SetItems(items)
	m.Columns.Truncate(1)
	m.push(col)
}

// followHit navigates the columns to where a search hit lives
func (m *Model) followHit(item domain.ListItem) tea.Cmd {
	loc, ok := m.searchHits[itemKey(item)]
	if !ok {
		return nil
	}
	m.Columns.Truncate(1)
	m.updateLayout()
	if !m.Columns.Top().SelectID(strconv.FormatInt(loc.CourseID, 10)) {
		return m.setStatus("Course is no longer listed")
	}

	switch item.(type) {
	case domain.Course:
		return nil
	case domain.Division:
		m.jump = &jumpTarget{loc: loc, target: components.ColumnTypeDivisions, id: item.GetID()}
	default:
		m.jump = &jumpTarget{loc: loc, target: components.ColumnTypeContents, id: item.GetID()}
	}
	return m.drill()
}

// === Status ===

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusID++
	m.status = msg
	m.statusIsError = false
	return clearStatusAfter(m.statusID)
}

func (m *Model) setError(context string, err error) tea.Cmd {
	m.logger.Error(context, "error", err)
	m.statusID++
	m.status = context + ": " + describeError(err)
	m.statusIsError = true
	return clearStatusAfter(m.statusID)
}

// describeError turns known failures into short footer text
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrServerOffline):
		return "server unreachable"
	case errors.Is(err, domain.ErrAuthFailed):
		return "session expired, sign in again"
	case errors.Is(err, domain.ErrCourseNotFound):
		return "course no longer exists"
	case errors.Is(err, domain.ErrDivisionNotFound):
		return "division no longer exists"
	default:
		return err.Error()
	}
}
