package lifecycle

import (
	"fmt"

	"github.com/byteness/leasegate/grant"
)

// ValidationError reports a rejected submission or modification input.
// Field names the offending input so interface layers can point at it.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IllegalTransitionError reports an operation attempted against a request
// in the wrong lifecycle state.
type IllegalTransitionError struct {
	From grant.Status
	To   grant.Status
}

// Error implements the error interface.
func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// ConflictError reports a mutation lost to a concurrent writer. The caller
// should re-read the request and retry if still appropriate.
type ConflictError struct {
	ID string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("request %s was modified concurrently", e.ID)
}

// Unwrap exposes the store-level sentinel for errors.Is checks.
func (e *ConflictError) Unwrap() error {
	return grant.ErrConcurrentModification
}

// ForbiddenError reports an actor lacking authority for an operation.
type ForbiddenError struct {
	Actor  string
	Action string
	Reason string
}

// Error implements the error interface.
func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s may not %s: %s", e.Actor, e.Action, e.Reason)
}
