package billing

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a missing client, vehicle, invoice, or quotation.
// Repositories wrap it with the resource name.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or missing input. It is always raised
// before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a lifecycle operation attempted from a state
// that forbids it, naming both states.
type InvalidTransitionError struct {
	Current   string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s a document in state %q", e.Attempted, e.Current)
}

// ConflictError reports a numbering or access-code collision that survived
// the bounded internal retries.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict allocating %s after retries", e.Resource)
}
