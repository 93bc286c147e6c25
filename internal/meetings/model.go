package meetings

import (
	"time"
)

// Meeting is a logged sales appointment. It doubles as the lead
// record: scoring, outcome, and the soft-delete marker all live here.
type Meeting struct {
	ID                   string     `json:"id"`
	OccursAt             time.Time  `json:"occurs_at"`
	BookedByPersonID     string     `json:"booked_by_person_id"`
	AttendedByPersonID   *string    `json:"attended_by_person_id,omitempty"`
	BookedCalendarUserID *string    `json:"booked_calendar_user_id,omitempty"`
	LeadScore            int        `json:"lead_score"`
	IsClosed             bool       `json:"is_closed"`
	DiscardedAt          *time.Time `json:"discarded_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// LogMeetingRequest creates a meeting together with its follow-up row.
type LogMeetingRequest struct {
	OccursAt             time.Time `json:"occurs_at"`
	BookedByPersonID     string    `json:"booked_by_person_id"`
	BookedCalendarUserID *string   `json:"booked_calendar_user_id,omitempty"`
	LeadScore            int       `json:"lead_score"`
}

// Validate checks required fields before hitting storage.
func (r *LogMeetingRequest) Validate() error {
	if r.OccursAt.IsZero() {
		return ErrOccursAtRequired
	}
	if r.BookedByPersonID == "" {
		return ErrBookedByRequired
	}
	if r.LeadScore < 1 || r.LeadScore > 3 {
		return ErrInvalidScore
	}
	return nil
}

// OutcomeUpdate mutates scoring and attendance after the meeting
// happened. Nil fields are left untouched.
type OutcomeUpdate struct {
	LeadScore          *int    `json:"lead_score,omitempty"`
	AttendedByPersonID *string `json:"attended_by_person_id,omitempty"`
}

// Validate rejects out-of-range scores.
func (u *OutcomeUpdate) Validate() error {
	if u.LeadScore != nil && (*u.LeadScore < 1 || *u.LeadScore > 3) {
		return ErrInvalidScore
	}
	return nil
}

// ListFilter narrows the active meetings view. Scores of nil means all
// scores; From/To bound occurs_at as a half-open [From, To) range.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Scores []int64
}

// PersonAggregate is one person's raw totals over an instant range.
// Aggregates deliberately include discarded meetings so historical KPI
// numbers never shift when a lead is discarded.
type PersonAggregate struct {
	PersonID string `json:"person_id"`
	Meetings int    `json:"meetings"`
	ScoreSum int    `json:"score_sum"`
	Closes   int    `json:"closes"`
}
