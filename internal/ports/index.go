package ports

import "plandeck/internal/domain"

// PlanIndex provides cached access to plan records and the reference graph.
// Query operations go through database indexes.
type PlanIndex interface {
	// Lifecycle
	Open(plansDir string) error
	Close() error

	// Sync operations
	NeedsFullRebuild() bool
	SyncIncremental() (*domain.SyncStats, error)
	SyncFull() (*domain.SyncStats, error)

	// Node queries
	GetNode(path string) (*domain.IndexNode, error)
	GetNodeByID(planID int) (*domain.IndexNode, error)
	ListNodes() ([]domain.IndexNode, error)

	// Edge queries (reference graph)
	FindReferencesTo(planID int) ([]domain.Edge, error)
	FindReferencesFrom(sourcePath string) ([]domain.Edge, error)

	// ApplyRewrites mirrors a completed renumber in one transaction
	ApplyRewrites(changes []domain.FileChange) error

	// Batch updates
	BeginTx() (IndexTx, error)
}

// IndexTx represents a transaction for atomic cache updates
type IndexTx interface {
	// Node operations
	UpsertNode(node *domain.IndexNode) error
	DeleteNode(path string) error
	RenameNode(oldPath, newPath string) error

	// Edge operations
	DeleteEdgesFromFile(sourcePath string) error
	InsertEdge(edge *domain.Edge) error

	// Transaction control
	Commit() error
	Rollback() error
}
