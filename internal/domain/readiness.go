package domain

import (
	"fmt"
	"slices"
)

// Outcome classifies the result of a readiness query
type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomeReady
	OutcomeParentReady
	OutcomeNotFound
	OutcomeDirectoryMissing
	OutcomeBlocked
	OutcomeNoTasks
	OutcomeMaybeOnly
	OutcomeNothingPending
	OutcomeRootDone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInProgress:
		return "in-progress"
	case OutcomeReady:
		return "ready"
	case OutcomeParentReady:
		return "parent-ready"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeDirectoryMissing:
		return "directory-missing"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeNoTasks:
		return "no-tasks"
	case OutcomeMaybeOnly:
		return "maybe-only"
	case OutcomeNothingPending:
		return "nothing-pending"
	case OutcomeRootDone:
		return "root-done"
	default:
		return "unknown"
	}
}

// Readiness is the answer to "what should be worked on next under this root".
// Plan is nil when nothing is actionable; Message always explains why.
type Readiness struct {
	Plan    *Plan
	Outcome Outcome
	Message string
}

// Found reports whether a plan was selected
func (r Readiness) Found() bool {
	return r.Plan != nil
}

// DirectoryMissing builds the result for an unreadable plan directory
func DirectoryMissing(dir string) Readiness {
	return Readiness{
		Outcome: OutcomeDirectoryMissing,
		Message: fmt.Sprintf("Directory not found: %s\n"+
			"  - check the plans directory setting (--dir or PLANDECK_DIR)\n"+
			"  - create the directory and add a plan file", dir),
	}
}

// DiscoverDependencies walks the graph reachable from root through dependency
// lists and child back-references. The root itself is not included.
func DiscoverDependencies(set *PlanSet, rootID int) []int {
	children := BuildChildren(set.Plans)
	visited := map[int]bool{rootID: true}
	var queue, found []int

	enqueue := func(id int) {
		if id == 0 || visited[id] {
			return
		}
		visited[id] = true
		queue = append(queue, id)
	}

	root := set.Plans[rootID]
	for _, dep := range root.Dependencies {
		enqueue(dep)
	}
	for _, child := range children[rootID] {
		enqueue(child)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		p, ok := set.Plans[id]
		if !ok {
			continue
		}
		found = append(found, id)
		for _, dep := range p.Dependencies {
			enqueue(dep)
		}
		for _, child := range children[id] {
			enqueue(child)
		}
	}
	return found
}

// FindNextReady selects the single best plan to work on under rootID
func FindNextReady(set *PlanSet, rootID int) Readiness {
	root, ok := set.Get(rootID)
	if !ok {
		return Readiness{
			Outcome: OutcomeNotFound,
			Message: fmt.Sprintf("Plan not found: %d\n"+
				"  - run 'plandeck list' to see available plans\n"+
				"  - check that the plans directory is the one you expect", rootID),
		}
	}

	var active []*Plan
	for _, id := range DiscoverDependencies(set, rootID) {
		p := set.Plans[id]
		if p.Status.IsActive() {
			active = append(active, p)
		}
	}

	var candidates []*Plan
	var blocked, noTasks, maybe int
	for _, p := range active {
		switch {
		case p.Priority == PriorityMaybe:
			maybe++
		case len(p.Tasks) == 0:
			noTasks++
		case p.Status == StatusPending && !dependenciesDone(set, p):
			blocked++
		default:
			candidates = append(candidates, p)
		}
	}

	if len(candidates) > 0 {
		slices.SortFunc(candidates, compareReadiness)
		best := candidates[0]
		if best.Status == StatusInProgress {
			return Readiness{Plan: best, Outcome: OutcomeInProgress, Message: "Found in-progress plan"}
		}
		return Readiness{Plan: best, Outcome: OutcomeReady, Message: "Found ready plan"}
	}

	if dependenciesDone(set, root) {
		if root.Status == StatusDone {
			return Readiness{
				Outcome: OutcomeRootDone,
				Message: fmt.Sprintf("All dependencies of plan %d are complete and the plan itself is done\n"+
					"  - nothing left to do here; pick another plan", rootID),
			}
		}
		return Readiness{
			Plan:    root,
			Outcome: OutcomeParentReady,
			Message: "All dependencies are complete - ready to work on the parent plan",
		}
	}

	switch {
	case blocked > 0:
		return Readiness{
			Outcome: OutcomeBlocked,
			Message: fmt.Sprintf("No ready dependencies: %s blocked by incomplete prerequisites\n"+
				"  - finish or cancel the prerequisite plans first", countPlans(blocked)),
		}
	case noTasks > 0:
		return Readiness{
			Outcome: OutcomeNoTasks,
			Message: fmt.Sprintf("No ready dependencies: %s with no actionable tasks\n"+
				"  - add tasks to the pending dependency plans", countPlans(noTasks)),
		}
	case maybe > 0:
		return Readiness{
			Outcome: OutcomeMaybeOnly,
			Message: fmt.Sprintf("No ready dependencies: all remaining dependencies have maybe priority (%s)\n"+
				"  - raise the priority of a plan you want to work on", countPlans(maybe)),
		}
	default:
		return Readiness{
			Outcome: OutcomeNothingPending,
			Message: "No pending or in-progress dependencies found, but some direct dependencies are not done\n" +
				"  - check for missing, cancelled or deferred dependencies of the root plan",
		}
	}
}

// compareReadiness orders in-progress before pending, then priority, then id
func compareReadiness(a, b *Plan) int {
	if a.Status != b.Status {
		if a.Status == StatusInProgress {
			return -1
		}
		if b.Status == StatusInProgress {
			return 1
		}
	}
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return rb - ra
	}
	return a.ID - b.ID
}

func dependenciesDone(set *PlanSet, p *Plan) bool {
	for _, dep := range p.Dependencies {
		if dep == p.ID {
			continue
		}
		d, ok := set.Plans[dep]
		if !ok || d.Status != StatusDone {
			return false
		}
	}
	return true
}

func countPlans(n int) string {
	if n == 1 {
		return "1 plan"
	}
	return fmt.Sprintf("%d plans", n)
}
