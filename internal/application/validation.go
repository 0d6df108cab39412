package application

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "planID" -> "plan ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"planID":   "plan ID",
		"rootID":   "root plan ID",
		"keep":     "keep path",
		"trunk":    "trunk branch",
		"plansDir": "plans directory",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ParsePlanID parses a user supplied plan id.
// Returns a ValidationError unless the value is a positive integer.
func ParsePlanID(fieldName, raw string) (int, error) {
	if err := ValidateRequired(fieldName, raw); err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("expected a positive %s, got: %s", formatFieldName(fieldName), raw),
		}
	}
	return id, nil
}

// ValidatePlanID checks an already parsed id
func ValidatePlanID(fieldName string, id int) error {
	if id <= 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("expected a positive %s, got: %d", formatFieldName(fieldName), id),
		}
	}
	return nil
}
