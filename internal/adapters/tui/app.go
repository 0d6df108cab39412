package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"plandeck/internal/adapters/tui/views"
	"plandeck/internal/application/commands"
)

// ViewState represents the current view
type ViewState int

const (
	ViewReview ViewState = iota
	ViewHelp
)

// Outcome is how the review session ended
type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomeApplied
)

// App is the interactive renumber review
type App struct {
	state   ViewState
	review  *views.RenumberModel
	help    *views.HelpModel
	outcome Outcome
	result  *commands.RenumberResult
}

// NewApp creates a review of a planned renumber pass
func NewApp(applier views.Applier, result *commands.RenumberResult, root string) *App {
	return &App{
		state:  ViewReview,
		review: views.NewRenumberModel(applier, result, root),
		help:   views.NewHelpModel(),
		result: result,
	}
}

// Outcome reports whether the changes were applied once the program exits
func (a *App) Outcome() Outcome {
	return a.outcome
}

// Result returns the reviewed result, updated after apply
func (a *App) Result() *commands.RenumberResult {
	return a.result
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.review.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.review.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, views.ReviewKeys.Quit) {
			return a, tea.Quit
		}

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToReviewMsg:
		a.state = ViewReview
		return a, nil

	case views.RenumberAppliedMsg:
		a.outcome = OutcomeApplied
		a.result = msg.Result
		return a, tea.Quit

	case views.RenumberCancelledMsg:
		a.outcome = OutcomeCancelled
		return a, tea.Quit
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewReview:
		_, cmd = a.review.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	if a.state == ViewHelp {
		return a.help.View()
	}
	return a.review.View()
}
