package kpi

import "time"

// Entry is one person's activity counts for one business-local
// calendar day. The (person, day) pair is the natural key; repeated
// submissions overwrite the day's counts.
type Entry struct {
	PersonID           string    `json:"person_id"`
	EntryDate          string    `json:"entry_date"` // YYYY-MM-DD in the business timezone
	Calls              int       `json:"calls"`
	Conversations      int       `json:"conversations"`
	AppointmentsBooked int       `json:"appointments_booked"`
	Sits               int       `json:"sits"`
	Closes             int       `json:"closes"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Validate rejects entries without an identity or day, or with
// negative counts.
func (e *Entry) Validate() error {
	if e.PersonID == "" {
		return ErrPersonRequired
	}
	if _, err := time.Parse("2006-01-02", e.EntryDate); err != nil {
		return ErrInvalidEntryDate
	}
	if e.Calls < 0 || e.Conversations < 0 || e.AppointmentsBooked < 0 || e.Sits < 0 || e.Closes < 0 {
		return ErrNegativeCount
	}
	return nil
}

// PersonTotals sums a person's entries over a date range.
type PersonTotals struct {
	PersonID           string `json:"person_id"`
	Calls              int    `json:"calls"`
	Conversations      int    `json:"conversations"`
	AppointmentsBooked int    `json:"appointments_booked"`
	Sits               int    `json:"sits"`
	Closes             int    `json:"closes"`
}
