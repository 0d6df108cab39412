package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Status represents the lifecycle state of a plan
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
	StatusDeferred   Status = "deferred"
)

// ParseStatus converts a raw status string into a Status.
// An empty string is treated as pending.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case "", StatusPending:
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusDone:
		return StatusDone, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusDeferred:
		return StatusDeferred, nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}

// IsActive reports whether the status is pending or in progress
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// Priority represents how urgently a plan should be picked up
type Priority string

const (
	PriorityUnset  Priority = ""
	PriorityMaybe  Priority = "maybe"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority converts a raw priority string into a Priority
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.TrimSpace(s)) {
	case PriorityUnset:
		return PriorityUnset, nil
	case PriorityMaybe:
		return PriorityMaybe, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityUrgent:
		return PriorityUrgent, nil
	default:
		return "", fmt.Errorf("invalid priority: %q", s)
	}
}

// Rank orders priorities for selection. Higher is more urgent.
// Unset and maybe both rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task is a single checklist entry inside a plan
type Task struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Done        bool   `yaml:"done"`
}

// Plan represents a single plan record.
// An ID or Parent of 0 means the field is absent.
type Plan struct {
	ID           int
	Title        string
	Goal         string
	Details      string
	Parent       int
	Dependencies []int
	Status       Status
	Priority     Priority
	Tasks        []Task
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Filename is the on-disk location; it is never serialized
	Filename string

	// Source is the raw file content the plan was read from. Writers patch
	// it so keys the model does not know about survive a rewrite.
	Source []byte
}

// HasID reports whether the plan carries a usable identifier
func (p *Plan) HasID() bool {
	return p.ID > 0
}

// Clone returns a deep copy of the plan
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	c := *p
	c.Dependencies = slices.Clone(p.Dependencies)
	c.Tasks = slices.Clone(p.Tasks)
	return &c
}

// AllTasksDone reports whether every task is done. An empty list is not done.
func (p *Plan) AllTasksDone() bool {
	if len(p.Tasks) == 0 {
		return false
	}
	for _, t := range p.Tasks {
		if !t.Done {
			return false
		}
	}
	return true
}

// DisplayName returns "<id> <title>" for listings
func (p *Plan) DisplayName() string {
	title := p.Title
	if title == "" {
		title = p.Goal
	}
	if title == "" {
		return fmt.Sprintf("%d", p.ID)
	}
	return fmt.Sprintf("%d %s", p.ID, title)
}

// PlanFile pairs a scanned file with its parsed plan.
// RawID is the id token as written, kept so missing or non-numeric ids stay observable.
type PlanFile struct {
	Path  string
	RawID string
	Plan  *Plan
}

// PlanSet is the collapsed, last-write-wins view of a plan directory
type PlanSet struct {
	Plans map[int]*Plan
	MaxID int
}

// NewPlanSet builds a PlanSet from scanned files. Later files win on duplicate ids.
func NewPlanSet(files []PlanFile) *PlanSet {
	set := &PlanSet{Plans: make(map[int]*Plan, len(files))}
	for _, f := range files {
		if f.Plan == nil || !f.Plan.HasID() {
			continue
		}
		set.Plans[f.Plan.ID] = f.Plan
		if f.Plan.ID > set.MaxID {
			set.MaxID = f.Plan.ID
		}
	}
	return set
}

// Get returns the plan with the given id
func (s *PlanSet) Get(id int) (*Plan, bool) {
	p, ok := s.Plans[id]
	return p, ok
}

// SortedIDs returns all ids in ascending order
func (s *PlanSet) SortedIDs() []int {
	ids := make([]int, 0, len(s.Plans))
	for id := range s.Plans {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
