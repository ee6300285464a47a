package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/tui/styles"
)

// Layout constants for list columns
const (
	BorderWidth  = 2
	BorderHeight = 2

	// title line plus the "↑ more" and "↓ more" lines
	chromeLines = 3
)

// ListColumn is a scrollable, filterable list of catalog items.
type ListColumn struct {
	items      []domain.ListItem
	columnType ColumnType
	parentID   int64 // course ID for divisions, division ID for contents

	cursor     int
	offset     int
	maxVisible int

	width   int
	height  int
	focused bool
	title   string

	loading bool
	spinner string
	err     error

	filterActive bool
	filterInput  textinput.Model
	matches      fuzzy.Matches // nil when no query
}

// titleSource adapts items to sahilm/fuzzy.Source
type titleSource []domain.ListItem

func (s titleSource) String(i int) string { return strings.ToLower(s[i].GetTitle()) }
func (s titleSource) Len() int            { return len(s) }

// NewListColumn creates an empty column that shows a loading state until
// SetItems is called.
func NewListColumn(colType ColumnType, title string, parentID int64) *ListColumn {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentBoldStyle
	ti.TextStyle = styles.AccentStyle

	return &ListColumn{
		columnType:  colType,
		parentID:    parentID,
		title:       title,
		loading:     true,
		filterInput: ti,
	}
}

// Update handles navigation and filter keys. Only the focused column reacts.
func (c *ListColumn) Update(msg tea.Msg) tea.Cmd {
	if !c.focused {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if c.IsFilterTyping() {
		switch keyMsg.String() {
		case "esc":
			c.ClearFilter()
			return nil
		case "enter":
			c.filterInput.Blur()
			return nil
		case "backspace":
			if c.filterInput.Value() == "" {
				c.ClearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return cmd
	}

	if c.filterActive && keyMsg.String() == "esc" {
		c.ClearFilter()
		return nil
	}

	count := c.ItemCount()
	if count == 0 {
		return nil
	}
	switch keyMsg.String() {
	case "j", "down":
		c.SetSelectedIndex(c.cursor + 1)
	case "k", "up":
		c.SetSelectedIndex(c.cursor - 1)
	case "g", "home":
		c.SetSelectedIndex(0)
	case "G", "end":
		c.SetSelectedIndex(count - 1)
	case "ctrl+d":
		c.SetSelectedIndex(c.cursor + c.maxVisible/2)
	case "ctrl+u":
		c.SetSelectedIndex(c.cursor - c.maxVisible/2)
	}
	return nil
}

// SetItems replaces the column contents and ends the loading state.
// The cursor stays on the same item ID when it is still present.
func (c *ListColumn) SetItems(items []domain.ListItem) {
	var keepID string
	if sel := c.SelectedItem(); sel != nil {
		keepID = sel.GetID()
	}

	c.items = items
	c.loading = false
	c.err = nil
	if c.filterActive {
		c.applyFilter()
	}
	c.cursor = 0
	c.offset = 0
	if keepID != "" {
		c.SelectID(keepID)
	}
}

// SetError ends the loading state with an error message in place of items.
func (c *ListColumn) SetError(err error) {
	c.loading = false
	c.err = err
}

func (c *ListColumn) SetLoading(loading bool)  { c.loading = loading }
func (c *ListColumn) IsLoading() bool          { return c.loading }
func (c *ListColumn) Err() error               { return c.err }
func (c *ListColumn) SetSpinner(frame string)  { c.spinner = frame }
func (c *ListColumn) SetFocused(focused bool)  { c.focused = focused }
func (c *ListColumn) IsFocused() bool          { return c.focused }
func (c *ListColumn) ColumnType() ColumnType   { return c.columnType }
func (c *ListColumn) ParentID() int64          { return c.parentID }
func (c *ListColumn) Title() string            { return c.title }
func (c *ListColumn) SelectedIndex() int       { return c.cursor }
func (c *ListColumn) Items() []domain.ListItem { return c.items }

func (c *ListColumn) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

// ItemCount returns the number of visible items (after filtering)
func (c *ListColumn) ItemCount() int {
	if c.matches != nil {
		return len(c.matches)
	}
	return len(c.items)
}

// SelectedItem returns the item under the cursor, or nil.
func (c *ListColumn) SelectedItem() domain.ListItem {
	if c.cursor < 0 || c.cursor >= c.ItemCount() {
		return nil
	}
	return c.items[c.mapIndex(c.cursor)]
}

// SetSelectedIndex moves the cursor, clamped to the visible items.
func (c *ListColumn) SetSelectedIndex(idx int) {
	c.cursor = max(0, min(idx, c.ItemCount()-1))
	c.ensureVisible()
}

// SelectID moves the cursor to the visible item with the given ID.
// Returns false when no such item is visible.
func (c *ListColumn) SelectID(id string) bool {
	for i := 0; i < c.ItemCount(); i++ {
		if c.items[c.mapIndex(i)].GetID() == id {
			c.SetSelectedIndex(i)
			return true
		}
	}
	return false
}

// ToggleFilter opens the filter input
func (c *ListColumn) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

func (c *ListColumn) IsFiltering() bool { return c.filterActive }

// IsFilterTyping reports whether keystrokes go to the filter input
func (c *ListColumn) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// ClearFilter closes the filter and shows every item again
func (c *ListColumn) ClearFilter() {
	c.filterActive = false
	c.matches = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.recalcMaxVisible()
}

func (c *ListColumn) applyFilter() {
	query := strings.ToLower(c.filterInput.Value())
	if query == "" {
		c.matches = nil
		return
	}
	c.matches = fuzzy.FindFrom(query, titleSource(c.items))
	if c.matches == nil {
		c.matches = fuzzy.Matches{}
	}
	c.cursor = 0
	c.offset = 0
}

func (c *ListColumn) mapIndex(i int) int {
	if c.matches != nil {
		return c.matches[i].Index
	}
	return i
}

func (c *ListColumn) recalcMaxVisible() {
	c.maxVisible = c.height - BorderHeight - chromeLines
	if c.filterActive {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *ListColumn) ensureVisible() {
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

// Rendering

func (c *ListColumn) View() string {
	style := styles.ColumnFrame(c.focused)
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(c.width-frameW, 0)).
		Height(max(c.height-frameH, 0)).
		Render(c.renderContent())
}

func (c *ListColumn) renderContent() string {
	itemWidth := max(c.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))

	status := func(line string) string {
		return titleLine + "\n \n" + line + "\n "
	}
	switch {
	case c.loading:
		return status(styles.AccentStyle.Render(c.spinner) + styles.MutedStyle.Render(" Loading..."))
	case c.err != nil:
		return status(styles.DangerStyle.Render(styles.Truncate(c.err.Error(), itemWidth)))
	}

	count := c.ItemCount()
	if count == 0 {
		msg := "No items"
		if c.matches != nil {
			msg = "No matches"
		}
		content := status(styles.MutedStyle.Render(msg))
		if c.filterActive {
			content += "\n" + c.renderFilterBar()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		var matched []int
		if c.matches != nil {
			matched = c.matches[i].MatchedIndexes
		}
		lines = append(lines, renderItem(c.items[c.mapIndex(i)], matched, i == c.cursor, itemWidth))
	}

	header, footer := " ", " "
	if c.offset > 0 {
		header = styles.MutedStyle.Render("↑ more")
	}
	if end < count {
		footer = styles.MutedStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.renderFilterBar()
	}
	return content
}

func (c *ListColumn) renderFilterBar() string {
	bar := c.filterInput.View()
	if c.matches != nil {
		bar += styles.MutedStyle.Render(fmt.Sprintf(" [%d/%d]", len(c.matches), len(c.items)))
	}
	return bar
}

// renderItem draws one row: type marker, title with matched characters
// highlighted, and the item description right after it.
func renderItem(item domain.ListItem, matched []int, selected bool, width int) string {
	marker, markerFg := itemMarker(item)
	dim := styles.Muted

	desc := item.GetDescription()
	titleWidth := width - 4
	if desc != "" {
		titleWidth -= len([]rune(desc)) + 1
	}
	title := styles.Truncate(item.GetTitle(), max(titleWidth, 5))

	parts := []styles.RowPart{{Text: marker + " ", Foreground: &markerFg}}
	parts = append(parts, highlight(title, matched)...)
	if desc != "" && titleWidth > 5 {
		parts = append(parts, styles.RowPart{Text: " " + desc, Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}

func itemMarker(item domain.ListItem) (string, lipgloss.Color) {
	switch v := item.(type) {
	case domain.Course:
		return styles.CourseMarker, styles.CourseColor
	case domain.Division:
		return styles.DivisionMarker, styles.DivisionColor
	case domain.Content:
		switch v.Type {
		case domain.ContentTypeVideo:
			return styles.VideoMarker, styles.VideoColor
		case domain.ContentTypePDF:
			return styles.PDFMarker, styles.PDFColor
		}
	}
	return styles.OtherMarker, styles.Muted
}

// highlight splits title into runs so matched byte offsets render bold
func highlight(title string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	accent := styles.Accent
	var parts []styles.RowPart
	var run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		part := styles.RowPart{Text: run.String()}
		if runMatched {
			part.Foreground = &accent
			part.Bold = true
		}
		parts = append(parts, part)
		run.Reset()
	}
	for i, r := range title {
		if set[i] != runMatched {
			flush()
			runMatched = set[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}
