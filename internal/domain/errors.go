package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrCycle      = errors.New("dependency cycle")
	ErrPathEscape = errors.New("path escapes root directory")
	ErrPathClash  = errors.New("target path clash")
)

// CycleError reports the members of a family that could not be ordered
type CycleError struct {
	Root       int
	Unresolved []int
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Unresolved))
	for i, id := range e.Unresolved {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("cycle detected in family rooted at %d: unresolved plans %s", e.Root, strings.Join(ids, ", "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// PathEscapeError reports a computed target path outside the root directory
type PathEscapeError struct {
	Root   string
	Target string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("refusing to write %s: outside of %s", e.Target, e.Root)
}

func (e *PathEscapeError) Is(target error) bool {
	return target == ErrPathEscape
}

// PathClashError reports two records that would be written to the same path
type PathClashError struct {
	Target string
	First  string
	Second string
}

func (e *PathClashError) Error() string {
	return fmt.Sprintf("both %s and %s would be written to %s", e.First, e.Second, e.Target)
}

func (e *PathClashError) Is(target error) bool {
	return target == ErrPathClash
}

// TargetExistsError reports a rename onto a file that the write does not
// account for, such as one the scan skipped
type TargetExistsError struct {
	Target string
	Source string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("%s would overwrite existing file %s", e.Source, e.Target)
}

func (e *TargetExistsError) Is(target error) bool {
	return target == ErrPathClash
}
