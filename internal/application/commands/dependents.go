package commands

import (
	"context"
	"fmt"

	"plandeck/internal/application"
	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// Dependent is an indexed plan that references the queried plan
type Dependent struct {
	Node domain.IndexNode
	Kind domain.EdgeKind
}

// DependentsResult lists the plans referencing PlanID
type DependentsResult struct {
	PlanID     int
	Target     *domain.IndexNode
	Dependents []Dependent
}

// DependentsCommand queries the index for children and dependents of a plan
type DependentsCommand struct {
	index  ports.PlanIndex
	PlanID int
}

// NewDependentsCommand creates a new DependentsCommand
func NewDependentsCommand(index ports.PlanIndex, planID int) *DependentsCommand {
	return &DependentsCommand{
		index:  index,
		PlanID: planID,
	}
}

// Validate checks the plan id
func (c *DependentsCommand) Validate() error {
	return application.ValidatePlanID("planID", c.PlanID)
}

// Execute runs the dependents query
func (c *DependentsCommand) Execute(ctx context.Context) (*DependentsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	target, err := c.index.GetNodeByID(c.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	if target == nil {
		return nil, &application.NotFoundError{PlanID: c.PlanID}
	}

	edges, err := c.index.FindReferencesTo(c.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query references: %w", err)
	}

	result := &DependentsResult{PlanID: c.PlanID, Target: target}
	for _, e := range edges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node, err := c.index.GetNode(e.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", e.SourcePath, err)
		}
		if node == nil {
			continue
		}
		result.Dependents = append(result.Dependents, Dependent{Node: *node, Kind: e.Kind})
	}
	return result, nil
}
