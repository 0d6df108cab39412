package application

import (
	"errors"
	"fmt"

	"plandeck/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid ID")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrCycle            = domain.ErrCycle
	ErrPathEscape       = domain.ErrPathEscape
	ErrPathClash        = domain.ErrPathClash
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidID && (e.Field == "planID" || e.Field == "rootID")
}

// NotFoundError reports a plan id that does not exist
type NotFoundError struct {
	PlanID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plan %d not found", e.PlanID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RenumberError represents a renumber pass that stopped before writing
type RenumberError struct {
	Phase string
	Err   error
}

func (e *RenumberError) Error() string {
	return fmt.Sprintf("renumber failed during %s: %v", e.Phase, e.Err)
}

func (e *RenumberError) Unwrap() error {
	return e.Err
}
