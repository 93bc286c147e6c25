package followup

import "errors"

var (
	// ErrNotFound is returned when the referenced lead or follow-up row does not exist
	ErrNotFound = errors.New("lead not found")

	// ErrConflict is returned when a transition's precondition no longer holds
	// (lead already closed, discarded, or raced by another client)
	ErrConflict = errors.New("lead state changed, refresh and retry")

	// ErrNotOwner is returned when someone other than the resolved owner
	// marks a lead followed up without an admin override
	ErrNotOwner = errors.New("only the current owner may follow up this lead")

	// ErrInvalidOwner is returned when a reassign target is empty
	ErrInvalidOwner = errors.New("owner person id is required")
)
