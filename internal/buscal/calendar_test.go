package buscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := New("Australia/Melbourne")
	require.NoError(t, err)
	return cal
}

func TestNewUnknownTimezone(t *testing.T) {
	_, err := New("Australia/Nowhere")
	require.Error(t, err)
}

func TestLocalDateAcrossUTCBoundary(t *testing.T) {
	cal := newTestCalendar(t)

	// 23:00Z on Sunday 10 March is already Monday 11 March in
	// Melbourne (AEDT, +11).
	d := cal.LocalDate(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-11", d.String())
}

func TestLocalDateUsesPerDateOffset(t *testing.T) {
	cal := newTestCalendar(t)

	// AEDT ends 7 April 2024. A hardcoded +11 would push this
	// instant into 8 April; the real offset (+10) keeps it on the 7th.
	d := cal.LocalDate(time.Date(2024, 4, 7, 13, 30, 0, 0, time.UTC))
	assert.Equal(t, "2024-04-07", d.String())
}

func TestLocalDateConstantWithinDay(t *testing.T) {
	cal := newTestCalendar(t)

	midnight := time.Date(2024, 6, 12, 0, 0, 0, 0, cal.Location())
	for _, offset := range []time.Duration{0, time.Second, 6 * time.Hour, 12 * time.Hour, 24*time.Hour - time.Second} {
		assert.Equal(t, "2024-06-12", cal.LocalDate(midnight.Add(offset)).String(), "offset %s", offset)
	}
}

func TestLocalMidnightRoundTrip(t *testing.T) {
	cal := newTestCalendar(t)

	d := Date{Year: 2024, Month: time.November, Day: 3}
	instant := cal.LocalMidnight(d)
	assert.Equal(t, d, cal.LocalDate(instant))
	assert.NotEqual(t, d, cal.LocalDate(instant.Add(-time.Second)))
}

func TestStartOfWeek(t *testing.T) {
	cal := newTestCalendar(t)

	tests := []struct {
		name string
		in   Date
		want string
	}{
		{"monday maps to itself", Date{2024, time.March, 11}, "2024-03-11"},
		{"sunday maps back six days", Date{2024, time.March, 17}, "2024-03-11"},
		{"wednesday", Date{2024, time.March, 13}, "2024-03-11"},
		{"crosses month boundary", Date{2024, time.May, 1}, "2024-04-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cal.StartOfWeek(tt.in)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, time.Monday, cal.LocalMidnight(got).Weekday())
			// Idempotent.
			assert.Equal(t, got, cal.StartOfWeek(got))
		})
	}
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2024-03-01", AddDays(Date{2024, time.February, 29}, 1).String())
	assert.Equal(t, "2023-12-31", AddDays(Date{2024, time.January, 1}, -1).String())
	assert.Equal(t, "2024-07-10", AddDays(Date{2024, time.July, 3}, 7).String())
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 2, DaysBetween(Date{2024, time.March, 8}, Date{2024, time.March, 10}))
	assert.Equal(t, -3, DaysBetween(Date{2024, time.March, 11}, Date{2024, time.March, 8}))
	assert.Equal(t, 0, DaysBetween(Date{2024, time.March, 8}, Date{2024, time.March, 8}))
}

func TestBusinessMonth(t *testing.T) {
	cal := newTestCalendar(t)

	tests := []struct {
		name      string
		instant   time.Time
		wantStart string
		wantEnd   string
	}{
		{
			"on the 26th starts this month",
			time.Date(2024, 3, 26, 10, 0, 0, 0, cal.Location()),
			"2024-03-26", "2024-04-26",
		},
		{
			"on the 25th started last month",
			time.Date(2024, 3, 25, 10, 0, 0, 0, cal.Location()),
			"2024-02-26", "2024-03-26",
		},
		{
			"january rolls back into december",
			time.Date(2024, 1, 10, 10, 0, 0, 0, cal.Location()),
			"2023-12-26", "2024-01-26",
		},
		{
			"late december rolls into january",
			time.Date(2024, 12, 28, 10, 0, 0, 0, cal.Location()),
			"2024-12-26", "2025-01-26",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := cal.BusinessMonth(tt.instant)
			assert.Equal(t, tt.wantStart, m.Start.String())
			assert.Equal(t, tt.wantEnd, m.EndExclusive.String())
			assert.Equal(t, 26, m.Start.Day)
			assert.Equal(t, 26, m.EndExclusive.Day)
			assert.True(t, m.Start.Before(m.EndExclusive))
		})
	}
}

func TestBusinessMonthRangeIsHalfOpen(t *testing.T) {
	cal := newTestCalendar(t)

	start, end := cal.BusinessMonthRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-26", cal.LocalDate(start).String())
	assert.Equal(t, "2024-03-26", cal.LocalDate(end).String())
	assert.True(t, start.Before(end))
}

func TestWeekRange(t *testing.T) {
	cal := newTestCalendar(t)

	start, end := cal.WeekRange(time.Date(2024, 3, 13, 3, 0, 0, 0, cal.Location()))
	assert.Equal(t, "2024-03-11", cal.LocalDate(start).String())
	assert.Equal(t, time.Hour*24*7, end.Sub(start))
}

func TestWeeksInBusinessMonth(t *testing.T) {
	cal := newTestCalendar(t)

	// Feb 26 – Mar 26 2024 spans 29 days.
	weeks := cal.WeeksInBusinessMonth(time.Date(2024, 3, 1, 0, 0, 0, 0, cal.Location()))
	assert.InDelta(t, 29.0/7, weeks, 1e-9)
}

func TestTargetConversionRoundTrip(t *testing.T) {
	cal := newTestCalendar(t)
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, cal.Location())

	for weekly := 1; weekly <= 25; weekly++ {
		monthly := cal.MonthlyFromWeekly(weekly, at)
		back := cal.WeeklyFromMonthly(monthly, at)
		assert.InDelta(t, weekly, back, 1, "weekly %d -> monthly %d -> %d", weekly, monthly, back)
	}
}

func TestRangeLabel(t *testing.T) {
	assert.Equal(t, "26 Feb – 25 Mar 2024",
		RangeLabel(Date{2024, time.February, 26}, Date{2024, time.March, 26}))
	assert.Equal(t, "26 Dec 2023 – 25 Jan 2024",
		RangeLabel(Date{2023, time.December, 26}, Date{2024, time.January, 26}))
}

func TestDaysUntilDue(t *testing.T) {
	cal := newTestCalendar(t)

	now := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC) // Mon 11 Mar local
	due := time.Date(2024, 3, 8, 1, 0, 0, 0, time.UTC)   // Fri 8 Mar local
	assert.Equal(t, -3, cal.DaysUntilDue(due, now))

	sameDay := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, cal.DaysUntilDue(sameDay, now))
}
