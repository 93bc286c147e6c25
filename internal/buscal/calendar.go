// Package buscal implements the business calendar used by every
// reporting surface: Melbourne-local day bucketing, Monday-anchored
// weeks, and the 26th-to-25th business month.
package buscal

import (
	"fmt"
	"math"
	"time"
)

// Date is a calendar date in the business timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Month is a half-open business-month window. Both bounds fall on the
// 26th of a calendar month.
type Month struct {
	Start        Date
	EndExclusive Date
}

// Calendar projects instants onto business-timezone dates. The location
// is resolved once at construction; an unknown zone name is a fatal
// configuration error for the caller.
type Calendar struct {
	loc *time.Location
}

// New resolves the IANA timezone and returns a calendar bound to it.
func New(tzName string) (*Calendar, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("buscal: unknown timezone %q: %w", tzName, err)
	}
	return &Calendar{loc: loc}, nil
}

// Location exposes the resolved business timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// LocalDate projects an absolute instant to the calendar date it falls
// on in the business timezone. Offsets come from the zone database, so
// daylight-saving transitions are handled per date.
func (c *Calendar) LocalDate(t time.Time) Date {
	y, m, d := t.In(c.loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// LocalMidnight is the inverse of LocalDate: the instant of 00:00 local
// on the given date. Used to build half-open [start, end) instant
// ranges for storage queries.
func (c *Calendar) LocalMidnight(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, c.loc)
}

// StartOfWeek returns the Monday on or before d.
func (c *Calendar) StartOfWeek(d Date) Date {
	weekday := c.LocalMidnight(d).Weekday() // Sunday = 0
	dayIndex := (int(weekday) + 6) % 7
	return AddDays(d, -dayIndex)
}

// AddDays shifts a date by n calendar days, normalizing across month
// and year boundaries.
func AddDays(d Date, n int) Date {
	shifted := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	y, m, day := shifted.Date()
	return Date{Year: y, Month: m, Day: day}
}

// DaysBetween returns the whole calendar days from a to b (negative
// when b precedes a).
func DaysBetween(a, b Date) int {
	ua := time.Date(a.Year, a.Month, a.Day, 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year, b.Month, b.Day, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// RangeLabel formats a half-open window as an inclusive human label,
// e.g. "26 Jan – 25 Feb 2026".
func RangeLabel(start, endExclusive Date) string {
	last := AddDays(endExclusive, -1)
	startLabel := fmt.Sprintf("%d %s", start.Day, start.Month.String()[:3])
	if start.Year != last.Year {
		startLabel += fmt.Sprintf(" %d", start.Year)
	}
	return fmt.Sprintf("%s – %d %s %d", startLabel, last.Day, last.Month.String()[:3], last.Year)
}

// BusinessMonth returns the reporting month containing t. A business
// month runs from the 26th of one calendar month inclusive to the 26th
// of the next exclusive.
func (c *Calendar) BusinessMonth(t time.Time) Month {
	ld := c.LocalDate(t)
	start := Date{Year: ld.Year, Month: ld.Month, Day: 26}
	if ld.Day < 26 {
		start = addMonths(start, -1)
	}
	return Month{Start: start, EndExclusive: addMonths(start, 1)}
}

// BusinessMonthRange converts the business month containing t into a
// half-open instant range.
func (c *Calendar) BusinessMonthRange(t time.Time) (time.Time, time.Time) {
	m := c.BusinessMonth(t)
	return c.LocalMidnight(m.Start), c.LocalMidnight(m.EndExclusive)
}

// WeekRange converts the Monday-anchored week containing t into a
// half-open instant range.
func (c *Calendar) WeekRange(t time.Time) (time.Time, time.Time) {
	start := c.StartOfWeek(c.LocalDate(t))
	return c.LocalMidnight(start), c.LocalMidnight(AddDays(start, 7))
}

// WeeksInBusinessMonth is the span of the business month containing t
// in weeks. Business months are 28 to 31 days, so the result sits
// between 4.0 and 4.43.
func (c *Calendar) WeeksInBusinessMonth(t time.Time) float64 {
	m := c.BusinessMonth(t)
	return float64(DaysBetween(m.Start, m.EndExclusive)) / 7
}

// WeeklyFromMonthly converts a monthly target to its weekly equivalent,
// rounding up so that hitting every week clears the month.
func (c *Calendar) WeeklyFromMonthly(monthly int, t time.Time) int {
	return int(math.Ceil(float64(monthly) / c.WeeksInBusinessMonth(t)))
}

// MonthlyFromWeekly converts a weekly target back to a monthly one.
func (c *Calendar) MonthlyFromWeekly(weekly int, t time.Time) int {
	return int(math.Round(float64(weekly) * c.WeeksInBusinessMonth(t)))
}

// DaysUntilDue compares the business-local dates of a due instant and
// now. Negative means overdue, zero means due today.
func (c *Calendar) DaysUntilDue(due, now time.Time) int {
	return DaysBetween(c.LocalDate(now), c.LocalDate(due))
}

func addMonths(d Date, n int) Date {
	shifted := time.Date(d.Year, d.Month+time.Month(n), d.Day, 0, 0, 0, 0, time.UTC)
	y, m, day := shifted.Date()
	return Date{Year: y, Month: m, Day: day}
}
