package domain

import (
	"path/filepath"
	"slices"
	"time"
)

// RewriteInput bundles the snapshot and the id mappings to apply to it
type RewriteInput struct {
	Root        string
	Files       []PlanFile
	Assignments []Assignment
	Hierarchy   map[int]int
	Now         time.Time
}

// FileChange is a dirty record together with where it has to be written
type FileChange struct {
	OriginalPath string
	TargetPath   string
	Original     *Plan
	Updated      *Plan
}

// IsRename reports whether the record moves to a new path
func (c FileChange) IsRename() bool {
	return filepath.Clean(c.OriginalPath) != filepath.Clean(c.TargetPath)
}

// IDChanged reports whether the record's own id changed
func (c FileChange) IDChanged() bool {
	return c.Original.ID != c.Updated.ID
}

// PlanRewrites applies the merged id mappings to a copy of every record and
// returns the records that need to be written. Conflict assignments apply to
// the specific files flagged; the hierarchy mapping applies to every id, parent
// and dependency reference. The snapshot itself is never modified.
func PlanRewrites(in RewriteInput) ([]FileChange, error) {
	assigned := make(map[string]Assignment, len(in.Assignments))
	for _, a := range in.Assignments {
		assigned[filepath.Clean(a.Path)] = a
	}

	var changes []FileChange
	for _, f := range in.Files {
		if f.Plan == nil {
			continue
		}
		orig := f.Plan
		upd := orig.Clone()

		if a, ok := assigned[filepath.Clean(f.Path)]; ok {
			upd.ID = a.NewID
			if a.Reason == ReasonMissing {
				upd.Status = StatusDone
			}
		} else if newID, ok := in.Hierarchy[orig.ID]; ok {
			upd.ID = newID
		}

		if newParent, ok := in.Hierarchy[orig.Parent]; ok && orig.Parent != 0 {
			upd.Parent = newParent
		}
		for i, dep := range upd.Dependencies {
			if newDep, ok := in.Hierarchy[dep]; ok {
				upd.Dependencies[i] = newDep
			}
		}

		if upd.ID == orig.ID && upd.Parent == orig.Parent &&
			slices.Equal(upd.Dependencies, orig.Dependencies) && upd.Status == orig.Status {
			continue
		}

		if !in.Now.IsZero() {
			upd.UpdatedAt = in.Now
		}

		target, err := targetPath(in.Root, f.Path, orig, upd)
		if err != nil {
			return nil, err
		}
		upd.Filename = target

		changes = append(changes, FileChange{
			OriginalPath: f.Path,
			TargetPath:   target,
			Original:     orig,
			Updated:      upd,
		})
	}

	if err := checkClashes(in.Files, changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func targetPath(root, path string, orig, upd *Plan) (string, error) {
	target := path
	if rel, err := filepath.Rel(root, path); err == nil {
		target = filepath.Join(root, RenamePath(rel, orig.ID, upd.ID, orig.Parent, upd.Parent))
	}
	if !WithinRoot(root, target) {
		return "", &PathEscapeError{Root: root, Target: target}
	}
	return target, nil
}

// checkClashes rejects two records landing on one path, or a rename onto a file
// that stays where it is.
func checkClashes(files []PlanFile, changes []FileChange) error {
	existing := make(map[string]bool, len(files))
	for _, f := range files {
		existing[filepath.Clean(f.Path)] = true
	}
	vacated := make(map[string]bool)
	for _, c := range changes {
		if c.IsRename() {
			vacated[filepath.Clean(c.OriginalPath)] = true
		}
	}

	claimed := make(map[string]string, len(changes))
	for _, c := range changes {
		target := filepath.Clean(c.TargetPath)
		if other, ok := claimed[target]; ok {
			return &PathClashError{Target: c.TargetPath, First: other, Second: c.OriginalPath}
		}
		claimed[target] = c.OriginalPath
	}
	for _, c := range changes {
		target := filepath.Clean(c.TargetPath)
		if !c.IsRename() || !existing[target] || vacated[target] {
			continue
		}
		return &PathClashError{Target: c.TargetPath, First: c.OriginalPath, Second: c.TargetPath}
	}
	return nil
}
