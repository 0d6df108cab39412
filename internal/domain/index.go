package domain

import "time"

// EdgeKind distinguishes the two kinds of plan references
type EdgeKind string

const (
	EdgeDependency EdgeKind = "dependency"
	EdgeParent     EdgeKind = "parent"
)

// IndexNode represents a cached plan file
type IndexNode struct {
	Path     string // Relative path from plans root (primary key)
	PlanID   int    // 0 when the file has no usable id
	ParentID int
	Title    string
	Status   Status
	Priority Priority
	Hash     string // Content hash of the file
	Mtime    int64  // Unix timestamp for incremental sync
}

// Edge represents a reference from one plan file to another plan id
type Edge struct {
	SourcePath string // File holding the reference
	TargetID   int    // Referenced plan id
	Kind       EdgeKind
}

// EdgesFor returns the references a plan makes, parent first
func EdgesFor(relPath string, p *Plan) []Edge {
	var edges []Edge
	if p.Parent != 0 {
		edges = append(edges, Edge{SourcePath: relPath, TargetID: p.Parent, Kind: EdgeParent})
	}
	seen := make(map[int]bool, len(p.Dependencies))
	for _, dep := range p.Dependencies {
		if seen[dep] {
			continue
		}
		seen[dep] = true
		edges = append(edges, Edge{SourcePath: relPath, TargetID: dep, Kind: EdgeDependency})
	}
	return edges
}

// SyncStats holds statistics from a sync operation
type SyncStats struct {
	NodesAdded   int
	NodesUpdated int
	NodesDeleted int
	EdgesAdded   int
	EdgesDeleted int
	FilesScanned int
	Duration     time.Duration
}
