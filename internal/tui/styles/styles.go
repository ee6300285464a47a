package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Accent     = lipgloss.Color("#14B8A6")
	Surface    = lipgloss.Color("#1E293B")
	Selection  = lipgloss.Color("#334155")
	Muted      = lipgloss.Color("#64748B")
	Text       = lipgloss.Color("#CBD5E1")
	TextBright = lipgloss.Color("#F8FAFC")
	Ok         = lipgloss.Color("#22C55E")
	Danger     = lipgloss.Color("#F43F5E")
)

// Catalog level colors and markers
var (
	CourseColor   = lipgloss.Color("#F59E0B")
	DivisionColor = lipgloss.Color("#A78BFA")
	VideoColor    = lipgloss.Color("#38BDF8")
	PDFColor      = lipgloss.Color("#FB923C")
)

const (
	CourseMarker   = "▪"
	DivisionMarker = "§"
	VideoMarker    = "▶"
	PDFMarker      = "▤"
	OtherMarker    = "•"
)

var (
	AccentStyle     = lipgloss.NewStyle().Foreground(Accent)
	AccentBoldStyle = AccentStyle.Bold(true)
	MutedStyle      = lipgloss.NewStyle().Foreground(Muted)
	DangerStyle     = lipgloss.NewStyle().Foreground(Danger)
	OkStyle         = lipgloss.NewStyle().Foreground(Ok)
)

// Form dialog
var (
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(1, 2).
			Background(Surface)

	DialogTitleStyle = lipgloss.NewStyle().Foreground(TextBright).Bold(true).Background(Surface)
	DialogLabelStyle = lipgloss.NewStyle().Foreground(Text).Background(Surface)
)

// ColumnFrame is the border around a browser column.
func ColumnFrame(focused bool) lipgloss.Style {
	border := Muted
	if focused {
		border = Accent
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}

// Truncate shortens s to width runes, ending with an ellipsis when cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

// RowPart is a run of text with an optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Bold       bool
}

// RenderListRow renders a list row padded to width. Each part is styled on
// its own so a selected row keeps one uniform background.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	var b strings.Builder
	visible := 0

	for _, part := range parts {
		style := lipgloss.NewStyle().Bold(part.Bold)
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(TextBright)
		default:
			style = style.Foreground(Text)
		}
		if selected {
			style = style.Background(Selection)
		}
		b.WriteString(style.Render(part.Text))
		visible += lipgloss.Width(part.Text)
	}

	fill := lipgloss.NewStyle()
	if selected {
		fill = fill.Background(Selection)
	}
	if pad := width - visible - 2; pad > 0 {
		b.WriteString(fill.Render(strings.Repeat(" ", pad)))
	}
	margin := fill.Render(" ")
	return margin + b.String() + margin
}

// SpinnerFrames animate plain-terminal progress outside the TUI
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
