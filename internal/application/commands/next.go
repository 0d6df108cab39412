package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"plandeck/internal/application"
	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// NextResult contains the outcome of a readiness query
type NextResult struct {
	domain.Readiness
	RootID int
}

// Path returns the selected plan's file, or "" when nothing was selected
func (r *NextResult) Path() string {
	if r.Plan == nil {
		return ""
	}
	return r.Plan.Filename
}

// NextCommand finds the next plan to work on under a root plan
type NextCommand struct {
	store  ports.PlanStore
	RootID int
}

// NewNextCommand creates a new NextCommand
func NewNextCommand(store ports.PlanStore, rootID int) *NextCommand {
	return &NextCommand{
		store:  store,
		RootID: rootID,
	}
}

// Validate checks the root id
func (c *NextCommand) Validate() error {
	return application.ValidatePlanID("rootID", c.RootID)
}

// Execute runs the readiness query. Not-found and nothing-ready outcomes are
// reported in the result, not as errors.
func (c *NextCommand) Execute(ctx context.Context) (*NextResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	set, err := c.store.ReadAll()
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return &NextResult{Readiness: domain.DirectoryMissing(c.store.Root()), RootID: c.RootID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plans: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &NextResult{Readiness: domain.FindNextReady(set, c.RootID), RootID: c.RootID}, nil
}
