package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestColumnFrame(t *testing.T) {
	assert.Equal(t, lipgloss.TerminalColor(Accent), ColumnFrame(true).GetBorderTopForeground())
	assert.Equal(t, lipgloss.TerminalColor(Muted), ColumnFrame(false).GetBorderTopForeground())

	w, h := ColumnFrame(true).GetFrameSize()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Go Fundamentals", Truncate("Go Fundamentals", 20))
	assert.Equal(t, "Go Fu…", Truncate("Go Fundamentals", 6))
	assert.Equal(t, "§", Truncate("§ Intro", 1))
	assert.Empty(t, Truncate("anything", 0))
}

func TestRenderListRow_PadsToWidth(t *testing.T) {
	row := RenderListRow([]RowPart{{Text: "▪ "}, {Text: "Databases"}}, true, 20)
	assert.Equal(t, 20, lipgloss.Width(row))
	assert.Contains(t, row, "Databases")
}
