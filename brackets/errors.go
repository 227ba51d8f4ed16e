package brackets

import "fmt"

// The engine reports three error classes. They are returned as typed values
// so the HTTP layer can map them without string matching; retry policy around
// persistence belongs to the caller.

// ValidationError marks malformed input: unsupported bracket sizes, too few
// qualified entrants, score states that identify no winner.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced match or entrant that is absent from the
// store.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// StructuralError marks a bracket whose persisted topology does not match the
// generated shape, e.g. a missing destination match or an occupied slot.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "bracket structure invalid: " + e.Reason
}

func structuralErrorf(format string, args ...interface{}) *StructuralError {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}
