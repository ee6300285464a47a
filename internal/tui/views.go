package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/tui/components"
	"github.com/mmcdole/lectern/internal/tui/styles"
)

// Layout proportions for the visible columns
const (
	ParentColumnPercent2 = 35 // [Parent | Active]

	GrandparentColumnPercent = 25 // [Grandparent | Parent | Active]
	ParentColumnPercent3     = 30

	MinColumnWidth = 15

	// single footer line
	ChromeHeight = 1
)

// visibleColumns returns at most the three topmost columns, root first
func (m *Model) visibleColumns() []*components.ListColumn {
	n := m.Columns.Len()
	start := max(n-3, 0)
	cols := make([]*components.ListColumn, 0, n-start)
	for i := start; i < n; i++ {
		cols = append(cols, m.Columns.Get(i))
	}
	return cols
}

// columnWidths splits the available width across n visible columns
func columnWidths(n, width int) []int {
	applyMin := func(w int) int { return max(w, MinColumnWidth) }
	switch n {
	case 0:
		return nil
	case 1:
		return []int{width}
	case 2:
		parent := applyMin(width * ParentColumnPercent2 / 100)
		return []int{parent, applyMin(width - parent)}
	default:
		grand := applyMin(width * GrandparentColumnPercent / 100)
		parent := applyMin(width * ParentColumnPercent3 / 100)
		return []int{grand, parent, applyMin(width - grand - parent)}
	}
}

// updateLayout sizes the visible columns to the window
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	cols := m.visibleColumns()
	widths := columnWidths(len(cols), m.Width)
	for i, col := range cols {
		col.SetSize(widths[i], m.Height-ChromeHeight)
	}
}

func (m *Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}

	var body string
	if m.Form.IsVisible() {
		body = lipgloss.Place(m.Width, m.Height-ChromeHeight, lipgloss.Center, lipgloss.Center, m.Form.View())
	} else {
		cols := m.visibleColumns()
		views := make([]string, len(cols))
		for i, col := range cols {
			views[i] = col.View()
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, views...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderFooter())
}

// renderFooter shows, in priority order: the sign-out prompt, the status
// message, population progress, then key help.
func (m *Model) renderFooter() string {
	var left string
	switch {
	case m.confirmLogout:
		left = styles.AccentStyle.Render("Sign out and drop the cached catalog? (y/n)")
	case m.status != "" && m.statusIsError:
		left = styles.DangerStyle.Render(m.status)
	case m.status != "":
		left = styles.OkStyle.Render(m.status)
	case m.progress != nil:
		left = m.spinner.View() + " " + styles.MutedStyle.Render(formatProgress(m.progress.Stage, m.progress.Loaded, m.progress.Total))
	default:
		left = m.renderHelp()
	}

	right := styles.MutedStyle.Render(string(m.owner()))
	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func formatProgress(stage domain.PopulateStage, loaded, total int) string {
	if total > 0 {
		return fmt.Sprintf("Loading %s %d/%d", stage, loaded, total)
	}
	return fmt.Sprintf("Loading %s...", stage)
}

func (m *Model) renderHelp() string {
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.AccentStyle.Render(h.Key)+" "+styles.MutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
