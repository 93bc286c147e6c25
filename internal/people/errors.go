package people

import "errors"

var (
	// ErrNotFound is returned when the referenced person does not exist
	ErrNotFound = errors.New("person not found")

	// ErrNameRequired is returned when creating a person without a name
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidRole is returned for roles outside setter/closer/admin
	ErrInvalidRole = errors.New("role must be setter, closer, or admin")

	// ErrNegativeTarget is returned for quotas below zero
	ErrNegativeTarget = errors.New("targets must not be negative")
)
