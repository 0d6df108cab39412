package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"plandeck/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToReviewMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Renumber Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Review"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Scroll changes"))
	b.WriteString(helpLine("pgup / pgdown", "Scroll a page"))
	b.WriteString(helpLine("y", "Apply every change"))
	b.WriteString(helpLine("n / esc / q", "Cancel without writing"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("What changes"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Duplicate ids: every file but the keeper gets a fresh id"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Missing ids:   a fresh id, status set to done"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Families:      parents and prerequisites take the lower ids"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Writes are all-or-nothing; a failure restores every file"))
	b.WriteString("\n\n")

	// Close hint
	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
