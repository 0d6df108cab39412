package domain

import (
	"slices"
	"strings"
	"testing"
)

func withTasks(p *Plan, titles ...string) *Plan {
	for _, title := range titles {
		p.Tasks = append(p.Tasks, Task{Title: title})
	}
	return p
}

func withStatus(p *Plan, s Status) *Plan {
	p.Status = s
	return p
}

func withPriority(p *Plan, pr Priority) *Plan {
	p.Priority = pr
	return p
}

func setOf(plans ...*Plan) *PlanSet {
	files := make([]PlanFile, len(plans))
	for i, p := range plans {
		files[i] = PlanFile{Path: p.Title, Plan: p}
	}
	return NewPlanSet(files)
}

func TestDiscoverDependencies(t *testing.T) {
	set := setOf(
		plan(1, 0, 2),
		plan(2, 0, 3),
		plan(3, 0),
		plan(4, 1),
		plan(5, 4),
		plan(6, 0, 1), // depends on root, not reachable from it
	)

	got := DiscoverDependencies(set, 1)
	slices.Sort(got)
	if !slices.Equal(got, []int{2, 3, 4, 5}) {
		t.Errorf("expected [2 3 4 5], got %v", got)
	}
}

func TestDiscoverDependencies_TerminatesOnCycles(t *testing.T) {
	set := setOf(plan(1, 0, 2), plan(2, 0, 3), plan(3, 0, 1, 2))

	got := DiscoverDependencies(set, 1)
	slices.Sort(got)
	if !slices.Equal(got, []int{2, 3}) {
		t.Errorf("expected [2 3], got %v", got)
	}
}

func TestFindNextReady(t *testing.T) {
	tests := []struct {
		name        string
		set         *PlanSet
		root        int
		wantID      int
		wantOutcome Outcome
		wantMsg     string
	}{
		{
			name: "ready dependency with done prerequisites",
			set: setOf(
				plan(1, 0, 2, 3),
				withStatus(plan(2, 0), StatusDone),
				withTasks(plan(3, 0, 4), "build"),
				withStatus(plan(4, 0), StatusDone),
			),
			root:        1,
			wantID:      3,
			wantOutcome: OutcomeReady,
			wantMsg:     "Found ready plan",
		},
		{
			name: "maybe priority is never selected",
			set: setOf(
				plan(1, 0, 2, 3),
				withStatus(plan(2, 0), StatusDone),
				withPriority(withTasks(plan(3, 0, 4), "build"), PriorityMaybe),
				withStatus(plan(4, 0), StatusDone),
			),
			root:        1,
			wantOutcome: OutcomeMaybeOnly,
			wantMsg:     "maybe",
		},
		{
			name: "in progress beats higher priority pending",
			set: setOf(
				plan(1, 0, 2, 3),
				withPriority(withTasks(plan(2, 0), "a"), PriorityUrgent),
				withStatus(withTasks(plan(3, 0), "b"), StatusInProgress),
			),
			root:        1,
			wantID:      3,
			wantOutcome: OutcomeInProgress,
			wantMsg:     "Found in-progress plan",
		},
		{
			name: "in progress surfaces despite unfinished prerequisites",
			set: setOf(
				plan(1, 0, 2),
				withStatus(withTasks(plan(2, 0, 3), "a"), StatusInProgress),
				withTasks(plan(3, 0, 4), "b"),
				plan(4, 0),
			),
			root:        1,
			wantID:      2,
			wantOutcome: OutcomeInProgress,
			wantMsg:     "Found in-progress plan",
		},
		{
			name: "priority then id",
			set: setOf(
				plan(1, 0, 2, 3, 4),
				withPriority(withTasks(plan(2, 0), "a"), PriorityLow),
				withPriority(withTasks(plan(3, 0), "b"), PriorityHigh),
				withPriority(withTasks(plan(4, 0), "c"), PriorityHigh),
			),
			root:        1,
			wantID:      3,
			wantOutcome: OutcomeReady,
		},
		{
			name: "children are candidates",
			set: setOf(
				plan(1, 0),
				withTasks(plan(2, 1), "child work"),
			),
			root:        1,
			wantID:      2,
			wantOutcome: OutcomeReady,
		},
		{
			name: "pending with incomplete prerequisite is blocked",
			set: setOf(
				plan(1, 0, 2),
				withTasks(plan(2, 0, 9), "a"),
				withStatus(plan(9, 0), StatusDeferred),
			),
			root:        1,
			wantOutcome: OutcomeBlocked,
			wantMsg:     "blocked",
		},
		{
			name: "no tasks",
			set: setOf(
				plan(1, 0, 2),
				plan(2, 0),
			),
			root:        1,
			wantOutcome: OutcomeNoTasks,
			wantMsg:     "no actionable tasks",
		},
		{
			name: "parent becomes ready when dependencies are done",
			set: setOf(
				plan(1, 0, 2),
				withStatus(plan(2, 0), StatusDone),
			),
			root:        1,
			wantID:      1,
			wantOutcome: OutcomeParentReady,
			wantMsg:     "ready to work on the parent plan",
		},
		{
			name: "done root is not returned",
			set: setOf(
				withStatus(plan(1, 0, 2), StatusDone),
				withStatus(plan(2, 0), StatusDone),
			),
			root:        1,
			wantOutcome: OutcomeRootDone,
		},
		{
			name: "cancelled direct dependency leaves nothing pending",
			set: setOf(
				plan(1, 0, 2),
				withStatus(plan(2, 0), StatusCancelled),
			),
			root:        1,
			wantOutcome: OutcomeNothingPending,
		},
		{
			name:        "unknown root",
			set:         setOf(plan(1, 0)),
			root:        42,
			wantOutcome: OutcomeNotFound,
			wantMsg:     "Plan not found: 42",
		},
		{
			name: "cycle through the root terminates",
			set: setOf(
				plan(1, 0, 2),
				withTasks(plan(2, 0, 1), "a"),
			),
			root:        1,
			wantOutcome: OutcomeBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindNextReady(tt.set, tt.root)
			if got.Outcome != tt.wantOutcome {
				t.Errorf("expected outcome %s, got %s (%s)", tt.wantOutcome, got.Outcome, got.Message)
			}
			if tt.wantID == 0 && got.Found() {
				t.Errorf("expected no plan, got %d", got.Plan.ID)
			}
			if tt.wantID != 0 && (!got.Found() || got.Plan.ID != tt.wantID) {
				t.Errorf("expected plan %d, got %+v", tt.wantID, got.Plan)
			}
			if tt.wantMsg != "" && !strings.Contains(got.Message, tt.wantMsg) {
				t.Errorf("expected message containing %q, got %q", tt.wantMsg, got.Message)
			}
		})
	}
}

func TestFindNextReady_Deterministic(t *testing.T) {
	set := setOf(
		plan(1, 0, 2, 3, 4),
		withTasks(plan(2, 0), "a"),
		withTasks(plan(3, 0), "b"),
		withTasks(plan(4, 0), "c"),
	)
	first := FindNextReady(set, 1)
	for range 20 {
		if again := FindNextReady(set, 1); again.Plan.ID != first.Plan.ID {
			t.Fatalf("expected stable selection %d, got %d", first.Plan.ID, again.Plan.ID)
		}
	}
	if first.Plan.ID != 2 {
		t.Errorf("expected lowest id on ties, got %d", first.Plan.ID)
	}
}

func TestDirectoryMissing(t *testing.T) {
	r := DirectoryMissing("/nope")
	if r.Found() || r.Outcome != OutcomeDirectoryMissing {
		t.Errorf("unexpected result %+v", r)
	}
	if !strings.Contains(r.Message, "/nope") {
		t.Errorf("expected the directory in the message, got %q", r.Message)
	}
}
