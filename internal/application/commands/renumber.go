package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"plandeck/internal/application"
	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// RenumberOptions controls how conflicts are resolved and whether anything is written
type RenumberOptions struct {
	DryRun bool
	// Keep lists files that must keep their id when it is duplicated
	Keep []string
	// BranchAware renumbers files changed on the current branch first
	BranchAware bool
	Trunk       string
}

// RenumberResult describes a renumber pass
type RenumberResult struct {
	Assignments []domain.Assignment
	Families    []domain.FamilyChange
	// CycleErrors holds one error per family that could not be reordered
	CycleErrors []error
	Changes     []domain.FileChange
	MaxID       int
	Applied     bool
	Message     string
}

// HasChanges reports whether any file needs to be written
func (r *RenumberResult) HasChanges() bool {
	return len(r.Changes) > 0
}

// RenumberCommand repairs duplicate or missing ids and reorders families
// whose parents or dependencies come after their dependents
type RenumberCommand struct {
	store   ports.PlanStore
	writer  ports.PlanWriter
	branch  ports.BranchChanges
	index   ports.PlanIndex
	logger  *slog.Logger
	now     func() time.Time
	Options RenumberOptions
}

// NewRenumberCommand creates a new RenumberCommand
func NewRenumberCommand(store ports.PlanStore, writer ports.PlanWriter, opts RenumberOptions) *RenumberCommand {
	return &RenumberCommand{
		store:   store,
		writer:  writer,
		logger:  slog.Default(),
		now:     time.Now,
		Options: opts,
	}
}

// WithBranchChanges sets the source of branch-changed files
func (c *RenumberCommand) WithBranchChanges(b ports.BranchChanges) *RenumberCommand {
	c.branch = b
	return c
}

// WithIndex sets an index to keep in step with applied changes
func (c *RenumberCommand) WithIndex(idx ports.PlanIndex) *RenumberCommand {
	c.index = idx
	return c
}

// WithLogger sets the logger
func (c *RenumberCommand) WithLogger(l *slog.Logger) *RenumberCommand {
	c.logger = l
	return c
}

// Validate checks the options
func (c *RenumberCommand) Validate() error {
	for _, keep := range c.Options.Keep {
		if err := application.ValidateRequired("keep", keep); err != nil {
			return err
		}
	}
	if c.Options.BranchAware {
		if err := application.ValidateRequired("trunk", c.Options.Trunk); err != nil {
			return err
		}
		if c.branch == nil {
			return &application.ValidationError{
				Field:   "trunk",
				Message: "branch-aware mode needs a git work tree",
			}
		}
	}
	return nil
}

// Plan computes every change without touching the filesystem
func (c *RenumberCommand) Plan(ctx context.Context) (*RenumberResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	files, err := c.store.Scan()
	if err != nil {
		return nil, &application.RenumberError{Phase: "scan", Err: err}
	}

	opts, err := c.conflictOptions()
	if err != nil {
		return nil, &application.RenumberError{Phase: "scan", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := domain.FindConflicts(files, opts)
	assignments, maxID := domain.AssignIDs(domain.MaxID(files), candidates)

	hierarchy := domain.PlanHierarchy(keepers(files, assignments))
	for _, err := range hierarchy.Errors {
		c.logger.Warn("family left unchanged", "error", err)
	}

	changes, err := domain.PlanRewrites(domain.RewriteInput{
		Root:        c.store.Root(),
		Files:       files,
		Assignments: assignments,
		Hierarchy:   hierarchy.Mapping,
		Now:         c.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return nil, &application.RenumberError{Phase: "rewrite", Err: err}
	}

	result := &RenumberResult{
		Assignments: assignments,
		Families:    hierarchy.Families,
		CycleErrors: hierarchy.Errors,
		Changes:     changes,
		MaxID:       maxID,
	}
	result.Message = summarize(result, c.Options.DryRun)
	return result, nil
}

// Apply writes a previously planned result
func (c *RenumberCommand) Apply(ctx context.Context, result *RenumberResult) error {
	if !result.HasChanges() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ops := make([]ports.WriteOp, len(result.Changes))
	for i, ch := range result.Changes {
		ops[i] = ports.WriteOp{OriginalPath: ch.OriginalPath, TargetPath: ch.TargetPath, Plan: ch.Updated}
	}
	if err := c.writer.Apply(ops); err != nil {
		return fmt.Errorf("failed to apply renumbering: %w", err)
	}
	result.Applied = true
	result.Message = summarize(result, false)
	c.logger.Info("renumber applied", "files", len(ops), "maxID", result.MaxID)

	// The index is a cache; a failure here only means the next sync rebuilds it
	if c.index != nil {
		if err := c.index.ApplyRewrites(result.Changes); err != nil {
			c.logger.Warn("failed to update index after renumber", "error", err)
		}
	}
	return nil
}

// Execute plans the pass and applies it unless DryRun is set
func (c *RenumberCommand) Execute(ctx context.Context) (*RenumberResult, error) {
	result, err := c.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if c.Options.DryRun {
		return result, nil
	}
	if err := c.Apply(ctx, result); err != nil {
		return result, err
	}
	return result, nil
}

func (c *RenumberCommand) conflictOptions() (domain.ConflictOptions, error) {
	var opts domain.ConflictOptions
	for _, keep := range c.Options.Keep {
		path := keep
		if !filepath.IsAbs(path) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return opts, fmt.Errorf("failed to resolve %s: %w", keep, err)
			}
			path = abs
		}
		opts.Preferred = append(opts.Preferred, filepath.Clean(path))
	}

	if c.Options.BranchAware {
		changed, err := c.branch.ChangedFiles(c.Options.Trunk)
		if err != nil {
			return opts, err
		}
		opts.BranchChanged = changed
	}
	return opts, nil
}

// keepers returns the records that hold their id after conflict resolution
func keepers(files []domain.PlanFile, assignments []domain.Assignment) map[int]*domain.Plan {
	renumbered := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		renumbered[filepath.Clean(a.Path)] = true
	}
	plans := make(map[int]*domain.Plan, len(files))
	for _, f := range files {
		if f.Plan == nil || !f.Plan.HasID() || renumbered[filepath.Clean(f.Path)] {
			continue
		}
		plans[f.Plan.ID] = f.Plan
	}
	return plans
}

func summarize(r *RenumberResult, dryRun bool) string {
	if !r.HasChanges() {
		if len(r.CycleErrors) > 0 {
			return fmt.Sprintf("No changes made; %d %s skipped because of cycles", len(r.CycleErrors), plural(len(r.CycleErrors), "family", "families"))
		}
		return "No renumbering needed"
	}
	verb := "Renumbered"
	if dryRun {
		verb = "Would renumber"
	} else if !r.Applied {
		verb = "Planned"
	}
	msg := fmt.Sprintf("%s %d %s (%d %s, %d reordered %s)",
		verb, len(r.Changes), plural(len(r.Changes), "file", "files"),
		len(r.Assignments), plural(len(r.Assignments), "conflict", "conflicts"),
		len(r.Families), plural(len(r.Families), "family", "families"))
	if len(r.CycleErrors) > 0 {
		msg += fmt.Sprintf("; %d %s skipped because of cycles", len(r.CycleErrors), plural(len(r.CycleErrors), "family", "families"))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
