package followup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianops/salesdesk/internal/buscal"
)

type fakeRepo struct {
	items []Item

	claimedLeadID  string
	claimedActorID string
	claimedNextDue time.Time

	markedLeadID   string
	markedOverride bool
	markedAt       time.Time
	markedNextDue  time.Time

	reassignedOwner string

	err error
}

func (f *fakeRepo) ListEligible(ctx context.Context, _ Filter) ([]Item, error) {
	return f.items, f.err
}

func (f *fakeRepo) Get(ctx context.Context, leadID string) (*Item, error) {
	for _, it := range f.items {
		if it.Lead.ID == leadID {
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Claim(ctx context.Context, leadID, actorID string, nextDueAt time.Time) (*FollowUp, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.claimedLeadID = leadID
	f.claimedActorID = actorID
	f.claimedNextDue = nextDueAt
	return &FollowUp{LeadID: leadID, OwnerPersonID: &actorID, NextFollowUpAt: &nextDueAt}, nil
}

func (f *fakeRepo) MarkFollowedUp(ctx context.Context, leadID, actorID string, override bool, followedAt, nextDueAt time.Time) (*FollowUp, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.markedLeadID = leadID
	f.markedOverride = override
	f.markedAt = followedAt
	f.markedNextDue = nextDueAt
	return &FollowUp{LeadID: leadID, OwnerPersonID: &actorID, LastFollowedUpAt: &followedAt, NextFollowUpAt: &nextDueAt}, nil
}

func (f *fakeRepo) Reassign(ctx context.Context, leadID, newOwnerID string) (*FollowUp, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.reassignedOwner = newOwnerID
	return &FollowUp{LeadID: leadID, OwnerPersonID: &newOwnerID}, nil
}

func newTestService(t *testing.T, repo Repository, now time.Time) *Service {
	t.Helper()
	cal := newTestCalendar(t)
	return NewService(repo, cal, buscal.FixedClock(now), 72*time.Hour, nil, nil)
}

func TestClaimSchedulesThreeDaysOut(t *testing.T) {
	now := time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	svc := newTestService(t, repo, now)

	fu, err := svc.Claim(context.Background(), "lead-1", "p-2")
	require.NoError(t, err)
	assert.Equal(t, "lead-1", repo.claimedLeadID)
	assert.Equal(t, "p-2", repo.claimedActorID)
	assert.True(t, now.Add(72*time.Hour).Equal(repo.claimedNextDue))
	assert.Equal(t, "p-2", *fu.OwnerPersonID)
}

func TestClaimRegardlessOfPriorOwner(t *testing.T) {
	// The repo enforces eligibility only; a claim by Y on X's lead
	// simply hands it to Y with a fresh schedule.
	now := time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	svc := newTestService(t, repo, now)

	fu, err := svc.Claim(context.Background(), "lead-1", "person-y")
	require.NoError(t, err)
	assert.Equal(t, "person-y", *fu.OwnerPersonID)
	assert.True(t, now.Add(72*time.Hour).Equal(*fu.NextFollowUpAt))
}

func TestMarkFollowedUpStampsBothInstants(t *testing.T) {
	now := time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	svc := newTestService(t, repo, now)

	fu, err := svc.MarkFollowedUp(context.Background(), "lead-1", "p-2", false)
	require.NoError(t, err)
	assert.True(t, now.Equal(repo.markedAt))
	assert.True(t, now.Add(72*time.Hour).Equal(repo.markedNextDue))
	assert.False(t, repo.markedOverride)
	assert.True(t, now.Equal(*fu.LastFollowedUpAt))
}

func TestMarkFollowedUpSurfacesConflict(t *testing.T) {
	repo := &fakeRepo{err: ErrConflict}
	svc := newTestService(t, repo, time.Now())

	_, err := svc.MarkFollowedUp(context.Background(), "lead-1", "p-2", false)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReassignRejectsEmptyOwner(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, time.Now())

	_, err := svc.Reassign(context.Background(), "lead-1", "")
	assert.ErrorIs(t, err, ErrInvalidOwner)
	assert.Empty(t, repo.reassignedOwner)
}

func TestListDueSortsAndClassifies(t *testing.T) {
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	overdue := now.Add(-48 * time.Hour)
	future := now.Add(96 * time.Hour)

	repo := &fakeRepo{items: []Item{
		{
			Lead:     Lead{ID: "future", BookedByPersonID: "p-1", LeadScore: 2},
			FollowUp: FollowUp{LeadID: "future", NextFollowUpAt: &future},
		},
		{
			Lead:     Lead{ID: "overdue", BookedByPersonID: "p-2", LeadScore: 1},
			FollowUp: FollowUp{LeadID: "overdue", NextFollowUpAt: &overdue},
		},
	}}
	svc := newTestService(t, repo, now)

	due, err := svc.ListDue(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "overdue", due[0].Lead.ID)
	assert.Equal(t, UrgencyOverdue, due[0].State.Urgency)
	assert.Equal(t, "p-2", due[0].OwnerPersonID)
	assert.Equal(t, "future", due[1].Lead.ID)
	assert.Equal(t, UrgencyFuture, due[1].State.Urgency)
}
