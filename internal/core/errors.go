package core

import "fmt"

// ValidationError rejects a malformed entity before it reaches the store.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

// DuplicateCycleError rejects a second monthly close for the same cycle.
type DuplicateCycleError struct {
	CycleMonth string
}

func (e *DuplicateCycleError) Error() string {
	return fmt.Sprintf("cycle %s is already closed", e.CycleMonth)
}
