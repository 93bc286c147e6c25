package followup

import (
	"sort"
	"time"

	"github.com/meridianops/salesdesk/internal/buscal"
)

// Urgency buckets a scheduled follow-up at read time.
type Urgency string

const (
	UrgencyNone    Urgency = "none"
	UrgencyOverdue Urgency = "overdue"
	UrgencyToday   Urgency = "due_today"
	UrgencyFuture  Urgency = "due_in_future"
)

// State is the derived follow-up state for one lead. It is never
// stored; list views compute it against the clock at read time.
type State struct {
	Urgency  Urgency    `json:"urgency"`
	DaysLate int        `json:"days_late,omitempty"`
	DaysLeft int        `json:"days_left,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

// Classify buckets a follow-up by comparing business-local dates.
// Urgency follows the calendar day (a follow-up due any time today is
// due_today), while DaysLate counts whole 24-hour periods elapsed
// since the due instant.
func Classify(fu FollowUp, cal *buscal.Calendar, now time.Time) State {
	if fu.NextFollowUpAt == nil {
		return State{Urgency: UrgencyNone}
	}
	due := *fu.NextFollowUpAt
	days := cal.DaysUntilDue(due, now)
	switch {
	case days < 0:
		late := int(now.Sub(due).Hours() / 24)
		if late < 1 {
			late = 1
		}
		return State{Urgency: UrgencyOverdue, DaysLate: late, DueAt: &due}
	case days == 0:
		return State{Urgency: UrgencyToday, DueAt: &due}
	default:
		return State{Urgency: UrgencyFuture, DaysLeft: days, DueAt: &due}
	}
}

// DueItem is a list row: the lead/follow-up pair plus its derived
// state and resolved owner.
type DueItem struct {
	Item
	State         State  `json:"state"`
	OwnerPersonID string `json:"resolved_owner_id"`
}

// SortByPriority orders rows most-overdue first: days-until-due
// ascending, earlier due timestamp breaking ties, unscheduled rows
// last. Stable so equal rows keep their fetch order.
func SortByPriority(items []Item, cal *buscal.Calendar, now time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].FollowUp.NextFollowUpAt, items[j].FollowUp.NextFollowUpAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		}
		da := cal.DaysUntilDue(*a, now)
		db := cal.DaysUntilDue(*b, now)
		if da != db {
			return da < db
		}
		return a.Before(*b)
	})
}
