package followup

import "time"

// Lead is a logged sales meeting carrying scoring and outcome fields.
// Rows are soft-deleted: DiscardedAt hides a lead from active views
// without touching historical aggregates.
type Lead struct {
	ID                   string     `json:"id"`
	OccursAt             time.Time  `json:"occurs_at"`
	BookedByPersonID     string     `json:"booked_by_person_id"`
	AttendedByPersonID   *string    `json:"attended_by_person_id,omitempty"`
	BookedCalendarUserID *string    `json:"booked_calendar_user_id,omitempty"`
	LeadScore            int        `json:"lead_score"`
	IsClosed             bool       `json:"is_closed"`
	DiscardedAt          *time.Time `json:"discarded_at,omitempty"`
}

// FollowUp is the scheduled next-contact record attached to a lead,
// one-to-one. A nil NextFollowUpAt means nothing is scheduled and the
// lead is excluded from due lists.
type FollowUp struct {
	LeadID           string     `json:"lead_id"`
	OwnerPersonID    *string    `json:"owner_person_id,omitempty"`
	LastFollowedUpAt *time.Time `json:"last_followed_up_at,omitempty"`
	NextFollowUpAt   *time.Time `json:"next_follow_up_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Item pairs a lead with its follow-up record, the unit every list view
// and transition operates on.
type Item struct {
	Lead     Lead     `json:"lead"`
	FollowUp FollowUp `json:"follow_up"`
}

// Owner resolves who is responsible for the lead. Resolution order is
// explicit owner, then attendee, then booker, then the denormalized
// calendar-user fallback. Empty string means nobody resolvable.
func (it Item) Owner() string {
	if it.FollowUp.OwnerPersonID != nil && *it.FollowUp.OwnerPersonID != "" {
		return *it.FollowUp.OwnerPersonID
	}
	if it.Lead.AttendedByPersonID != nil && *it.Lead.AttendedByPersonID != "" {
		return *it.Lead.AttendedByPersonID
	}
	if it.Lead.BookedByPersonID != "" {
		return it.Lead.BookedByPersonID
	}
	if it.Lead.BookedCalendarUserID != nil {
		return *it.Lead.BookedCalendarUserID
	}
	return ""
}

// Eligible reports whether the lead should surface in follow-up views:
// not discarded, not closed, scored 1-3, with a scheduled next contact.
func (it Item) Eligible() bool {
	return it.Lead.DiscardedAt == nil &&
		!it.Lead.IsClosed &&
		it.Lead.LeadScore >= 1 && it.Lead.LeadScore <= 3 &&
		it.FollowUp.NextFollowUpAt != nil
}
