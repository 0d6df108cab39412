package ports

// BranchChanges reports which plan files were modified on the current branch
type BranchChanges interface {
	// ChangedFiles returns absolute paths changed since the merge-base with trunk.
	// The returned map is never nil on success.
	ChangedFiles(trunk string) (map[string]bool, error)
}
