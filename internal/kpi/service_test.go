package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianops/salesdesk/internal/buscal"
	"github.com/meridianops/salesdesk/internal/meetings"
)

type fakeRepo struct {
	entries []*Entry
	totals  []PersonTotals

	listStart, listEnd string
	sumStart, sumEnd   string
}

func (f *fakeRepo) Upsert(ctx context.Context, e *Entry) (*Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (f *fakeRepo) SumRange(ctx context.Context, personID, start, end string) ([]PersonTotals, error) {
	f.sumStart, f.sumEnd = start, end
	return f.totals, nil
}

func (f *fakeRepo) ListRange(ctx context.Context, personID, start, end string) ([]*Entry, error) {
	f.listStart, f.listEnd = start, end
	return f.entries, nil
}

type fakeAggregator struct {
	start, end time.Time
	aggs       []meetings.PersonAggregate
}

func (f *fakeAggregator) AggregateRange(ctx context.Context, start, end time.Time) ([]meetings.PersonAggregate, error) {
	f.start, f.end = start, end
	return f.aggs, nil
}

type fakeTargets struct {
	targets []MonthlyTarget
}

func (f *fakeTargets) ListMonthlyTargets(ctx context.Context) ([]MonthlyTarget, error) {
	return f.targets, nil
}

func newTestService(t *testing.T, repo Repository, agg Aggregator, targets TargetSource, now time.Time) *Service {
	t.Helper()
	cal, err := buscal.New("Australia/Melbourne")
	require.NoError(t, err)
	return NewService(repo, agg, targets, cal, buscal.FixedClock(now))
}

func TestWeeklyWindowIsMondayAnchored(t *testing.T) {
	// Wednesday 5 June 2024, Melbourne.
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	svc := newTestService(t, repo, nil, nil, now)

	report, err := svc.Weekly(context.Background(), time.Time{}, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", report.WeekStart)
	assert.Equal(t, "2024-06-10", report.WeekEndExclusive)
	assert.Equal(t, "2024-06-03", repo.listStart)
	assert.Equal(t, "2024-06-10", repo.listEnd)
}

func TestWeeklyScalesMonthlyTargets(t *testing.T) {
	// June 2024 business month: 26 May - 26 June, 31 days, ~4.43 weeks.
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	targets := &fakeTargets{targets: []MonthlyTarget{{PersonID: "p-1", Meetings: 20, Closes: 4}}}
	svc := newTestService(t, &fakeRepo{}, nil, targets, now)

	report, err := svc.Weekly(context.Background(), time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, report.Targets, 1)
	// ceil(20 / (31/7)) = ceil(4.516) = 5; ceil(4 / 4.43) = 1.
	assert.Equal(t, 5, report.Targets[0].Meetings)
	assert.Equal(t, 1, report.Targets[0].Closes)
}

func TestMonthlyMergesEntriesAggregatesAndTargets(t *testing.T) {
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{totals: []PersonTotals{{PersonID: "p-1", Calls: 300, Closes: 3}}}
	agg := &fakeAggregator{aggs: []meetings.PersonAggregate{
		{PersonID: "p-1", Meetings: 12, ScoreSum: 27, Closes: 3},
		{PersonID: "p-2", Meetings: 6, ScoreSum: 13, Closes: 1},
	}}
	targets := &fakeTargets{targets: []MonthlyTarget{{PersonID: "p-1", Meetings: 20, Closes: 4}}}
	svc := newTestService(t, repo, agg, targets, now)

	report, err := svc.Monthly(context.Background(), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "2024-05-26", report.MonthStart)
	assert.Equal(t, "2024-06-26", report.MonthEndExclusive)
	assert.Equal(t, "2024-05-26", repo.sumStart)
	assert.Equal(t, "2024-06-26", repo.sumEnd)
	assert.InDelta(t, 31.0/7.0, report.Weeks, 0.0001)

	require.Len(t, report.Rows, 2)
	p1 := report.Rows[0]
	assert.Equal(t, "p-1", p1.PersonID)
	assert.Equal(t, 300, p1.Activity.Calls)
	assert.Equal(t, 12, p1.Meetings)
	assert.Equal(t, 27, p1.ScoreSum)
	assert.Equal(t, 20, p1.TargetMeetings)

	p2 := report.Rows[1]
	assert.Equal(t, "p-2", p2.PersonID)
	assert.Zero(t, p2.Activity.Calls)
	assert.Equal(t, 6, p2.Meetings)
	assert.Zero(t, p2.TargetMeetings)
}

func TestMonthlyAggregateRangeUsesLocalMidnights(t *testing.T) {
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	agg := &fakeAggregator{}
	svc := newTestService(t, &fakeRepo{}, agg, nil, now)

	_, err := svc.Monthly(context.Background(), time.Time{})
	require.NoError(t, err)

	// 26 May 00:00 AEST is 25 May 14:00 UTC.
	assert.Equal(t, time.Date(2024, 5, 25, 14, 0, 0, 0, time.UTC), agg.start.UTC())
	assert.Equal(t, time.Date(2024, 6, 25, 14, 0, 0, 0, time.UTC), agg.end.UTC())
}
