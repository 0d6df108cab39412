package ports

import "plandeck/internal/domain"

// PlanStore defines the interface for plan storage operations
type PlanStore interface {
	// Root returns the absolute plans directory
	Root() string

	// Scan returns every plan file under the root, duplicates included.
	// Files that fail to parse are skipped.
	Scan() ([]domain.PlanFile, error)

	// ReadAll collapses a scan into a last-write-wins PlanSet
	ReadAll() (*domain.PlanSet, error)

	ReadFile(path string) (*domain.Plan, error)
	WriteFile(path string, plan *domain.Plan) error

	// Encode serializes a plan in the on-disk format
	Encode(plan *domain.Plan) ([]byte, error)
}

// WriteOp is one step of a batched write: store Plan at TargetPath and, when
// OriginalPath differs, remove the original.
type WriteOp struct {
	OriginalPath string
	TargetPath   string
	Plan         *domain.Plan
}

// PlanWriter applies a set of writes as a unit
type PlanWriter interface {
	// Apply performs every op or none of them
	Apply(ops []WriteOp) error
}
