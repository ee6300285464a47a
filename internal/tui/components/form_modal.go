package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/lectern/internal/tui/styles"
)

const formWidth = 36

// FormField describes one input of a FormModal
type FormField struct {
	Label       string
	Placeholder string
	Value       string // initial value
	CharLimit   int
}

// FormModal is a small modal with labelled text inputs.
// Tab and shift+tab move between fields; enter submits.
type FormModal struct {
	visible bool
	title   string
	labels  []string
	inputs  []textinput.Model
	focus   int
	err     string
}

// NewFormModal creates a hidden form modal
func NewFormModal() FormModal {
	return FormModal{}
}

// Show opens the modal with fresh inputs for fields
func (m *FormModal) Show(title string, fields ...FormField) {
	m.visible = true
	m.title = title
	m.err = ""
	m.focus = 0
	m.labels = make([]string, len(fields))
	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = f.CharLimit
		if ti.CharLimit == 0 {
			ti.CharLimit = 80
		}
		ti.Width = formWidth - 2
		ti.Prompt = "› "
		ti.PromptStyle = styles.AccentBoldStyle
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextBright)
		ti.PlaceholderStyle = styles.MutedStyle
		ti.SetValue(f.Value)
		m.labels[i] = f.Label
		m.inputs[i] = ti
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// Hide dismisses the modal
func (m *FormModal) Hide() {
	m.visible = false
	m.inputs = nil
}

func (m FormModal) IsVisible() bool { return m.visible }
func (m FormModal) Title() string   { return m.title }

// SetError shows a validation message under the inputs and keeps the modal open
func (m *FormModal) SetError(msg string) {
	m.err = msg
}

// Values returns the current input values in field order
func (m FormModal) Values() []string {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = in.Value()
	}
	return values
}

// Update handles input events, returns (modal, cmd, submitted)
func (m FormModal) Update(msg tea.Msg) (FormModal, tea.Cmd, bool) {
	if !m.visible || len(m.inputs) == 0 {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		case "tab", "down":
			m.moveFocus(1)
			return m, nil, false
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

func (m *FormModal) moveFocus(delta int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// View renders the form modal
func (m FormModal) View() string {
	if !m.visible {
		return ""
	}

	block := lipgloss.NewStyle().Width(formWidth).Background(styles.Surface)
	rows := []string{styles.DialogTitleStyle.Width(formWidth).Render(m.title), block.Render("")}
	for i, in := range m.inputs {
		rows = append(rows,
			styles.DialogLabelStyle.Width(formWidth).Render(m.labels[i]),
			block.Render(in.View()),
		)
	}
	if m.err != "" {
		rows = append(rows, block.Render(""), styles.DangerStyle.Background(styles.Surface).Width(formWidth).Render(m.err))
	}
	rows = append(rows, block.Render(""), styles.MutedStyle.Background(styles.Surface).Width(formWidth).Render("tab next · enter save · esc cancel"))

	return styles.DialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
