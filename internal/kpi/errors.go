package kpi

import "errors"

var (
	// ErrPersonRequired is returned when an entry lacks a person id
	ErrPersonRequired = errors.New("person_id is required")

	// ErrInvalidEntryDate is returned when entry_date is not YYYY-MM-DD
	ErrInvalidEntryDate = errors.New("entry_date must be YYYY-MM-DD")

	// ErrNegativeCount is returned when any activity count is negative
	ErrNegativeCount = errors.New("activity counts must not be negative")
)
