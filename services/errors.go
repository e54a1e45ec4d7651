package services

import "fmt"

// Error taxonomy for the booking/lease/subscription core. Every mutating
// operation returns either the updated entity or one of these, so the
// calling route can map to a precise HTTP status and the UI can render the
// right remediation ("subscription expired" vs "unit already booked").

// ValidationError means the input was malformed or missing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// AuthorizationError means the caller lacks the role or ownership the
// operation requires.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// InvalidStateError means the operation is not legal in the entity's current
// state, including a lost race observed through a failed conditional update.
type InvalidStateError struct {
	Entity string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
}

// QuotaError means the owner's subscription does not admit the operation.
type QuotaError struct {
	Reason string
	Limit  int
}

func (e *QuotaError) Error() string {
	return "quota: " + e.Reason
}

// CollaboratorError wraps a failure from an external collaborator (document
// renderer, payment provider, push gateway). Live-channel and push failures
// are logged and swallowed by the dispatcher; renderer and payment failures
// surface to the caller as retryable.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
