package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// ListPlansCommand lists every plan file, duplicates included, ordered by id
type ListPlansCommand struct {
	store  ports.PlanStore
	Status string
}

// NewListPlansCommand creates a new ListPlansCommand. An empty status lists everything.
func NewListPlansCommand(store ports.PlanStore, status string) *ListPlansCommand {
	return &ListPlansCommand{
		store:  store,
		Status: status,
	}
}

// Validate checks the status filter
func (c *ListPlansCommand) Validate() error {
	if c.Status == "" {
		return nil
	}
	if _, err := domain.ParseStatus(c.Status); err != nil {
		return fmt.Errorf("invalid status filter: %w", err)
	}
	return nil
}

// Execute runs the list command
func (c *ListPlansCommand) Execute(ctx context.Context) ([]domain.PlanFile, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	files, err := c.store.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	var out []domain.PlanFile
	for _, f := range files {
		if c.Status != "" && string(f.Plan.Status) != c.Status {
			continue
		}
		out = append(out, f)
	}

	// Plans without an id sort last
	slices.SortStableFunc(out, func(a, b domain.PlanFile) int {
		ai, bi := a.Plan.ID, b.Plan.ID
		switch {
		case ai == 0 && bi != 0:
			return 1
		case bi == 0 && ai != 0:
			return -1
		case ai != bi:
			return ai - bi
		default:
			return strings.Compare(a.Path, b.Path)
		}
	})
	return out, nil
}
