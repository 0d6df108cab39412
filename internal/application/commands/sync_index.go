package commands

import (
	"context"
	"fmt"

	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// SyncIndexCommand brings the plan index up to date with the plans directory
type SyncIndexCommand struct {
	index ports.PlanIndex
	Full  bool
}

// NewSyncIndexCommand creates a new SyncIndexCommand
func NewSyncIndexCommand(index ports.PlanIndex, full bool) *SyncIndexCommand {
	return &SyncIndexCommand{index: index, Full: full}
}

// Execute runs a full rebuild when asked or when the index is stale,
// otherwise an incremental sync
func (c *SyncIndexCommand) Execute(ctx context.Context) (*domain.SyncStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.Full || c.index.NeedsFullRebuild() {
		stats, err := c.index.SyncFull()
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild index: %w", err)
		}
		return stats, nil
	}

	stats, err := c.index.SyncIncremental()
	if err != nil {
		return nil, fmt.Errorf("failed to sync index: %w", err)
	}
	return stats, nil
}
