package domain

import (
	"container/heap"
	"slices"
)

// Family is a group of plans sharing the same root ancestor
type Family struct {
	Root    int
	Members []int // ascending
}

// FamilyChange records the id mapping applied to one reordered family
type FamilyChange struct {
	Root    int
	Mapping map[int]int
}

// HierarchyResult is the outcome of reordering every disordered family.
// Mapping is the union of all family mappings; Errors holds per-family failures.
type HierarchyResult struct {
	Mapping  map[int]int
	Families []FamilyChange
	Errors   []error
}

// BuildChildren maps each parent id to its direct children, ascending.
// Parents that do not exist and self references are ignored.
func BuildChildren(plans map[int]*Plan) map[int][]int {
	children := make(map[int][]int)
	for id, p := range plans {
		if p.Parent == 0 || p.Parent == id {
			continue
		}
		if _, ok := plans[p.Parent]; !ok {
			continue
		}
		children[p.Parent] = append(children[p.Parent], id)
	}
	for parent := range children {
		slices.Sort(children[parent])
	}
	return children
}

// FindRoot walks parent links up to the top-most ancestor.
// When the walk runs into a cycle the smallest id on the cycle is used so that
// every member of the cycle resolves to the same root.
func FindRoot(plans map[int]*Plan, id int) int {
	visited := make(map[int]int)
	var path []int
	current := id
	for {
		visited[current] = len(path)
		path = append(path, current)

		p, ok := plans[current]
		if !ok || p.Parent == 0 || p.Parent == current {
			return current
		}
		if _, ok := plans[p.Parent]; !ok {
			return current
		}
		if start, seen := visited[p.Parent]; seen {
			return slices.Min(path[start:])
		}
		current = p.Parent
	}
}

// FindFamilies groups plans by root ancestor, skipping single-member families
func FindFamilies(plans map[int]*Plan) []Family {
	byRoot := make(map[int][]int)
	for id := range plans {
		root := FindRoot(plans, id)
		byRoot[root] = append(byRoot[root], id)
	}

	var families []Family
	for root, members := range byRoot {
		if len(members) < 2 {
			continue
		}
		slices.Sort(members)
		families = append(families, Family{Root: root, Members: members})
	}
	slices.SortFunc(families, func(a, b Family) int { return a.Root - b.Root })
	return families
}

// IsDisordered reports whether any parent or in-family dependency of a member
// carries an id that is not smaller than the member's own id.
func IsDisordered(plans map[int]*Plan, fam Family) bool {
	inFamily := memberSet(fam)
	for _, id := range fam.Members {
		p := plans[id]
		if p.Parent != 0 && p.Parent != id && inFamily[p.Parent] && p.Parent > id {
			return true
		}
		for _, dep := range p.Dependencies {
			if dep != id && inFamily[dep] && dep > id {
				return true
			}
		}
	}
	return false
}

// TopoSortFamily orders family members so that parents and in-family dependencies
// come before the plans that need them. Among ready members the smallest id goes
// first, so an already ordered family sorts to itself.
func TopoSortFamily(plans map[int]*Plan, fam Family) ([]int, error) {
	inFamily := memberSet(fam)
	edges := make(map[int]map[int]bool, len(fam.Members))
	inDegree := make(map[int]int, len(fam.Members))
	for _, id := range fam.Members {
		inDegree[id] = 0
	}

	addEdge := func(from, to int) {
		if from == to || !inFamily[from] {
			return
		}
		if edges[from] == nil {
			edges[from] = make(map[int]bool)
		}
		if edges[from][to] {
			return
		}
		edges[from][to] = true
		inDegree[to]++
	}

	for _, id := range fam.Members {
		p := plans[id]
		if p.Parent != 0 {
			addEdge(p.Parent, id)
		}
		for _, dep := range p.Dependencies {
			addEdge(dep, id)
		}
	}

	ready := &intHeap{}
	for _, id := range fam.Members {
		if inDegree[id] == 0 {
			heap.Push(ready, id)
		}
	}

	order := make([]int, 0, len(fam.Members))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(int)
		order = append(order, id)
		for next := range edges[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	if len(order) != len(fam.Members) {
		var unresolved []int
		for _, id := range fam.Members {
			if inDegree[id] > 0 {
				unresolved = append(unresolved, id)
			}
		}
		return nil, &CycleError{Root: fam.Root, Unresolved: unresolved}
	}
	return order, nil
}

// ReorderFamily re-assigns the family's own ids, ascending, to its members in
// topological order. Only ids that actually change appear in the mapping.
func ReorderFamily(plans map[int]*Plan, fam Family) (map[int]int, error) {
	order, err := TopoSortFamily(plans, fam)
	if err != nil {
		return nil, err
	}
	ids := slices.Clone(fam.Members)
	slices.Sort(ids)

	mapping := make(map[int]int)
	for i, oldID := range order {
		if ids[i] != oldID {
			mapping[oldID] = ids[i]
		}
	}
	return mapping, nil
}

// PlanHierarchy reorders every disordered family. A family that cannot be ordered
// is reported in Errors and left untouched; other families are still processed.
func PlanHierarchy(plans map[int]*Plan) HierarchyResult {
	result := HierarchyResult{Mapping: make(map[int]int)}
	for _, fam := range FindFamilies(plans) {
		if !IsDisordered(plans, fam) {
			continue
		}
		mapping, err := ReorderFamily(plans, fam)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if len(mapping) == 0 {
			continue
		}
		for oldID, newID := range mapping {
			result.Mapping[oldID] = newID
		}
		result.Families = append(result.Families, FamilyChange{Root: fam.Root, Mapping: mapping})
	}
	return result
}

func memberSet(fam Family) map[int]bool {
	set := make(map[int]bool, len(fam.Members))
	for _, id := range fam.Members {
		set[id] = true
	}
	return set
}

// intHeap is a min-heap of ids
type intHeap []int

func (h intHeap) Len() int           { return len(h) }
func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
