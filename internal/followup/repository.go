package followup

import (
	"context"
	"time"
)

// Filter narrows the eligible follow-up list.
type Filter struct {
	// OwnerID matches the resolved owner chain, not just the explicit
	// owner column.
	OwnerID  string
	MinScore int
	MaxScore int
}

// Repository is the storage boundary for follow-up reads and
// transitions. Every transition is a single conditional update: the
// store reports ErrNotFound when the lead row is missing, ErrConflict
// when a precondition no longer holds, and ErrNotOwner when a
// non-owner marks a lead followed up without override. Callers do not
// retry; they re-fetch and present current state.
type Repository interface {
	ListEligible(ctx context.Context, f Filter) ([]Item, error)
	Get(ctx context.Context, leadID string) (*Item, error)
	Claim(ctx context.Context, leadID, actorID string, nextDueAt time.Time) (*FollowUp, error)
	MarkFollowedUp(ctx context.Context, leadID, actorID string, override bool, followedAt, nextDueAt time.Time) (*FollowUp, error)
	Reassign(ctx context.Context, leadID, newOwnerID string) (*FollowUp, error)
}
