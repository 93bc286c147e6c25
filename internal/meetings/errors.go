package meetings

import "errors"

var (
	// ErrNotFound is returned when the referenced meeting does not exist
	ErrNotFound = errors.New("meeting not found")

	// ErrAlreadyClosed is returned when closing a meeting that is
	// already closed or discarded
	ErrAlreadyClosed = errors.New("meeting already closed or discarded")

	// ErrOccursAtRequired is returned when a meeting is logged without a time
	ErrOccursAtRequired = errors.New("occurs_at is required")

	// ErrBookedByRequired is returned when a meeting is logged without a booker
	ErrBookedByRequired = errors.New("booked_by_person_id is required")

	// ErrInvalidScore is returned for lead scores outside 1-3
	ErrInvalidScore = errors.New("lead_score must be between 1 and 3")
)
