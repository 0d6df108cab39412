package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"plandeck/internal/adapters/tui/styles"
	"plandeck/internal/application/commands"
)

// Applier writes a planned renumber result
type Applier interface {
	Apply(ctx context.Context, result *commands.RenumberResult) error
}

// ReviewKeyMap adds help and quit to the confirmation keys
type ReviewKeyMap struct {
	ConfirmKeyMap
	Help key.Binding
	Quit key.Binding
}

var ReviewKeys = ReviewKeyMap{
	ConfirmKeyMap: DefaultConfirmKeys,
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// header and footer lines around the change list
const reviewChrome = 9

// RenumberModel shows a planned renumber pass and applies it on confirmation
type RenumberModel struct {
	ConfirmationModel
	applier  Applier
	result   *commands.RenumberResult
	root     string
	viewport viewport.Model
	ready    bool
	applying bool
}

// NewRenumberModel creates a review of result; root is used to shorten paths
func NewRenumberModel(applier Applier, result *commands.RenumberResult, root string) *RenumberModel {
	return &RenumberModel{
		ConfirmationModel: NewConfirmationModel(),
		applier:           applier,
		result:            result,
		root:              root,
	}
}

// RenumberAppliedMsg indicates the changes were written
type RenumberAppliedMsg struct {
	Result *commands.RenumberResult
}

// RenumberErrMsg indicates the write failed and was rolled back
type RenumberErrMsg struct {
	Err error
}

// RenumberCancelledMsg indicates the user declined the changes
type RenumberCancelledMsg struct{}

// Init initializes the review view
func (m *RenumberModel) Init() tea.Cmd {
	return nil
}

// SetSize sizes the change list to the terminal
func (m *RenumberModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	h := max(height-reviewChrome, 3)
	if !m.ready {
		m.viewport = viewport.New(width, h)
		m.viewport.SetContent(m.renderChanges())
		m.ready = true
		return
	}
	m.viewport.Width = width
	m.viewport.Height = h
}

// Update handles messages for the review view
func (m *RenumberModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case RenumberErrMsg:
		m.applying = false
		m.SetMessage(msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.applying {
			return m, nil
		}
		if key.Matches(msg, ReviewKeys.Help) {
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		}
		switch m.Choose(msg) {
		case ChoiceCancel:
			return m, func() tea.Msg { return RenumberCancelledMsg{} }
		case ChoiceConfirm:
			if !m.result.HasChanges() {
				return m, nil
			}
			m.applying = true
			m.SetMessage("Applying...", false)
			return m, m.apply
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *RenumberModel) apply() tea.Msg {
	if err := m.applier.Apply(context.Background(), m.result); err != nil {
		return RenumberErrMsg{Err: err}
	}
	return RenumberAppliedMsg{Result: m.result}
}

func (m *RenumberModel) renderChanges() string {
	if !m.result.HasChanges() {
		return styles.MutedText.Render("Nothing to change.")
	}
	var b strings.Builder
	for _, c := range m.result.Changes {
		b.WriteString(RenderChange(m.root, c))
	}
	for _, err := range m.result.CycleErrors {
		b.WriteString(styles.WarningMsg.Render(fmt.Sprintf("skipped: %v", err)))
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the review view
func (m *RenumberModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Renumber Plans"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.result.Message))
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(styles.Pane.Render(m.viewport.View()))
	} else {
		b.WriteString(m.renderChanges())
	}
	b.WriteString("\n\n")

	if status := m.StatusLine(); status != "" {
		b.WriteString(status)
		b.WriteString("\n\n")
	}

	if m.result.HasChanges() {
		b.WriteString(RenderConfirmPrompt(fmt.Sprintf("Rewrite %d files?", len(m.result.Changes))))
	} else {
		b.WriteString(RenderHelpLine(m.Keys.Cancel))
	}
	b.WriteString("\n")
	b.WriteString(RenderHelpLine(ReviewKeys.Help, ReviewKeys.Quit))

	return styles.App.Render(b.String())
}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// SwitchToReviewMsg returns to the review view
type SwitchToReviewMsg struct{}
