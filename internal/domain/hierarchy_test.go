package domain

import (
	"errors"
	"slices"
	"testing"
)

func plan(id, parent int, deps ...int) *Plan {
	return &Plan{
		ID:           id,
		Title:        "plan",
		Parent:       parent,
		Dependencies: deps,
		Status:       StatusPending,
	}
}

func planMap(plans ...*Plan) map[int]*Plan {
	m := make(map[int]*Plan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return m
}

// applyMapping returns a renumbered copy of plans keyed by their new ids
func applyMapping(plans map[int]*Plan, mapping map[int]int) map[int]*Plan {
	remap := func(id int) int {
		if n, ok := mapping[id]; ok {
			return n
		}
		return id
	}
	out := make(map[int]*Plan, len(plans))
	for _, p := range plans {
		c := p.Clone()
		c.ID = remap(p.ID)
		if c.Parent != 0 {
			c.Parent = remap(c.Parent)
		}
		for i, d := range c.Dependencies {
			c.Dependencies[i] = remap(d)
		}
		out[c.ID] = c
	}
	return out
}

func TestFindRoot(t *testing.T) {
	tests := []struct {
		name  string
		plans map[int]*Plan
		start int
		want  int
	}{
		{
			name:  "no parent",
			plans: planMap(plan(1, 0)),
			start: 1,
			want:  1,
		},
		{
			name:  "grandchild",
			plans: planMap(plan(1, 0), plan(2, 1), plan(3, 2)),
			start: 3,
			want:  1,
		},
		{
			name:  "missing parent stops the walk",
			plans: planMap(plan(2, 99), plan(3, 2)),
			start: 3,
			want:  2,
		},
		{
			name:  "self parent",
			plans: planMap(plan(4, 4)),
			start: 4,
			want:  4,
		},
		{
			name:  "two node cycle",
			plans: planMap(plan(5, 6), plan(6, 5)),
			start: 6,
			want:  5,
		},
		{
			name:  "tail into cycle",
			plans: planMap(plan(7, 8), plan(8, 9), plan(9, 8)),
			start: 7,
			want:  8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindRoot(tt.plans, tt.start); got != tt.want {
				t.Errorf("expected root %d, got %d", tt.want, got)
			}
		})
	}
}

func TestFindFamilies_SkipsSingletons(t *testing.T) {
	plans := planMap(plan(1, 0), plan(2, 1), plan(3, 0), plan(10, 0), plan(11, 10), plan(12, 11))

	families := FindFamilies(plans)
	if len(families) != 2 {
		t.Fatalf("expected 2 families, got %d", len(families))
	}
	if families[0].Root != 1 || !slices.Equal(families[0].Members, []int{1, 2}) {
		t.Errorf("unexpected first family: %+v", families[0])
	}
	if families[1].Root != 10 || !slices.Equal(families[1].Members, []int{10, 11, 12}) {
		t.Errorf("unexpected second family: %+v", families[1])
	}
}

func TestIsDisordered(t *testing.T) {
	tests := []struct {
		name  string
		plans map[int]*Plan
		want  bool
	}{
		{"ordered", planMap(plan(1, 0), plan(2, 1), plan(3, 1, 2)), false},
		{"parent after child", planMap(plan(5, 0), plan(2, 5)), true},
		{"sibling dependency after dependent", planMap(plan(1, 0), plan(2, 1, 3), plan(3, 1)), true},
		{"dependency outside family ignored", planMap(plan(1, 0), plan(2, 1, 50)), false},
		{"self dependency ignored", planMap(plan(1, 0), plan(2, 1, 2)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fams := FindFamilies(tt.plans)
			if len(fams) != 1 {
				t.Fatalf("expected one family, got %d", len(fams))
			}
			if got := IsDisordered(tt.plans, fams[0]); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTopoSortFamily_OrderedFamilyIsIdentity(t *testing.T) {
	plans := planMap(plan(1, 0), plan(2, 1), plan(3, 1), plan(4, 2, 3))
	order, err := TopoSortFamily(plans, FindFamilies(plans)[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []int{1, 2, 3, 4}) {
		t.Errorf("expected identity order, got %v", order)
	}
}

func TestTopoSortFamily_Cycle(t *testing.T) {
	plans := planMap(plan(1, 0), plan(2, 1, 3), plan(3, 1, 2), plan(4, 1))
	_, err := TopoSortFamily(plans, FindFamilies(plans)[0])
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	if !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if !slices.Equal(cycleErr.Unresolved, []int{2, 3}) {
		t.Errorf("expected unresolved [2 3], got %v", cycleErr.Unresolved)
	}
}

func TestReorderFamily_ParentAfterChildren(t *testing.T) {
	// 10 is the parent of 4 and 7; 7 depends on 4
	plans := planMap(plan(10, 0), plan(4, 10), plan(7, 10, 4))
	mapping, err := ReorderFamily(plans, FindFamilies(plans)[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[int]int{10: 4, 4: 7, 7: 10}
	for oldID, newID := range want {
		if mapping[oldID] != newID {
			t.Errorf("expected %d -> %d, got %d", oldID, newID, mapping[oldID])
		}
	}
}

func TestPlanHierarchy_Invariants(t *testing.T) {
	plans := planMap(
		// family rooted at 9: parent has the largest id
		plan(9, 0), plan(3, 9), plan(5, 9, 3), plan(2, 5),
		// ordered family
		plan(20, 0), plan(21, 20),
		// family with a dependency cycle
		plan(30, 0), plan(31, 30, 32), plan(32, 30, 31), plan(29, 30),
		// unrelated plan depending on a reordered one
		plan(40, 0, 2),
	)

	result := PlanHierarchy(plans)

	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], ErrCycle) {
		t.Fatalf("expected exactly one cycle error, got %v", result.Errors)
	}
	if len(result.Families) != 1 || result.Families[0].Root != 9 {
		t.Fatalf("expected only family 9 to change, got %+v", result.Families)
	}

	after := applyMapping(plans, result.Mapping)
	if len(after) != len(plans) {
		t.Fatalf("duplicate ids after reordering: %d plans became %d", len(plans), len(after))
	}

	// id set conservation
	var before, got []int
	for _, id := range []int{9, 3, 5, 2} {
		before = append(before, id)
		if n, ok := result.Mapping[id]; ok {
			got = append(got, n)
		} else {
			got = append(got, id)
		}
	}
	slices.Sort(before)
	slices.Sort(got)
	if !slices.Equal(before, got) {
		t.Errorf("family ids changed from %v to %v", before, got)
	}

	// order invariant for the reordered family
	for _, p := range after {
		if FindRoot(after, p.ID) != result.Mapping[9] {
			continue
		}
		if p.Parent != 0 && p.Parent >= p.ID {
			t.Errorf("plan %d has parent %d", p.ID, p.Parent)
		}
		for _, d := range p.Dependencies {
			if d >= p.ID {
				t.Errorf("plan %d depends on later plan %d", p.ID, d)
			}
		}
	}

	// the outside reference still targets the same logical plan
	if after[40].Dependencies[0] != result.Mapping[2] {
		t.Errorf("expected plan 40 to depend on %d, got %d", result.Mapping[2], after[40].Dependencies[0])
	}

	// a second pass has nothing left to do
	second := PlanHierarchy(after)
	if len(second.Mapping) != 0 {
		t.Errorf("expected idempotent second pass, got mapping %v", second.Mapping)
	}
}
