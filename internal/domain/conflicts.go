package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// RenumberReason explains why a file has to receive a new id
type RenumberReason string

const (
	ReasonMissing  RenumberReason = "missing"
	ReasonConflict RenumberReason = "conflict"
)

// ConflictOptions tunes which file keeps a contested id.
// BranchChanged is nil when branch information is unavailable.
type ConflictOptions struct {
	Preferred     []string
	BranchChanged map[string]bool
}

// RenumberCandidate is a file that must receive a fresh id
type RenumberCandidate struct {
	Path       string
	OriginalID int // 0 when the id was missing or not numeric
	RawID      string
	Reason     RenumberReason
}

// Assignment is a candidate paired with its newly assigned id
type Assignment struct {
	RenumberCandidate
	NewID int
}

// MaxID returns the largest numeric id across all files
func MaxID(files []PlanFile) int {
	maxID := 0
	for _, f := range files {
		if f.Plan != nil && f.Plan.ID > maxID {
			maxID = f.Plan.ID
		}
	}
	return maxID
}

// FindConflicts returns every file that has to be renumbered, either because its id
// is missing or because another file claims the same id and wins the tie-break.
func FindConflicts(files []PlanFile, opts ConflictOptions) []RenumberCandidate {
	preferred := make(map[string]bool, len(opts.Preferred))
	for _, p := range opts.Preferred {
		preferred[filepath.Clean(p)] = true
	}
	changed := make(map[string]bool, len(opts.BranchChanged))
	for p, v := range opts.BranchChanged {
		if v {
			changed[filepath.Clean(p)] = true
		}
	}
	branchAware := opts.BranchChanged != nil

	var candidates []RenumberCandidate
	groups := make(map[int][]PlanFile)
	for _, f := range files {
		if f.Plan == nil || !f.Plan.HasID() {
			candidates = append(candidates, RenumberCandidate{
				Path:   f.Path,
				RawID:  f.RawID,
				Reason: ReasonMissing,
			})
			continue
		}
		groups[f.Plan.ID] = append(groups[f.Plan.ID], f)
	}

	for id, group := range groups {
		if len(group) < 2 {
			continue
		}
		keep := chooseKeeper(group, preferred, changed, branchAware)
		for _, f := range group {
			if f.Path == keep {
				continue
			}
			candidates = append(candidates, RenumberCandidate{
				Path:       f.Path,
				OriginalID: id,
				RawID:      f.RawID,
				Reason:     ReasonConflict,
			})
		}
	}

	slices.SortFunc(candidates, compareCandidates)
	return candidates
}

// chooseKeeper picks the path that retains the contested id
func chooseKeeper(group []PlanFile, preferred, changed map[string]bool, branchAware bool) string {
	for _, f := range group {
		if preferred[filepath.Clean(f.Path)] {
			return f.Path
		}
	}

	if branchAware {
		var unchanged, touched []PlanFile
		for _, f := range group {
			if changed[filepath.Clean(f.Path)] {
				touched = append(touched, f)
			} else {
				unchanged = append(unchanged, f)
			}
		}
		if len(touched) > 0 {
			if len(unchanged) > 0 {
				return earliest(unchanged).Path
			}
			return earliest(touched).Path
		}
	}

	return earliest(group).Path
}

// earliest returns the file with the oldest createdAt. Files without a timestamp
// lose to files with one; remaining ties go to the lexically smallest path.
func earliest(group []PlanFile) PlanFile {
	best := group[0]
	for _, f := range group[1:] {
		if createdBefore(f, best) {
			best = f
		}
	}
	return best
}

func createdBefore(a, b PlanFile) bool {
	at, bt := a.Plan.CreatedAt, b.Plan.CreatedAt
	switch {
	case at.IsZero() && !bt.IsZero():
		return false
	case !at.IsZero() && bt.IsZero():
		return true
	case !at.Equal(bt):
		return at.Before(bt)
	default:
		return a.Path < b.Path
	}
}

func compareCandidates(a, b RenumberCandidate) int {
	aNum, bNum := a.OriginalID > 0, b.OriginalID > 0
	switch {
	case aNum && !bNum:
		return -1
	case !aNum && bNum:
		return 1
	case aNum && bNum && a.OriginalID != b.OriginalID:
		return a.OriginalID - b.OriginalID
	}
	return strings.Compare(a.Path, b.Path)
}

// AssignIDs hands out sequential ids starting after maxID and returns the new maximum
func AssignIDs(maxID int, candidates []RenumberCandidate) ([]Assignment, int) {
	out := make([]Assignment, 0, len(candidates))
	next := maxID
	for _, c := range candidates {
		next++
		out = append(out, Assignment{RenumberCandidate: c, NewID: next})
	}
	return out, next
}
