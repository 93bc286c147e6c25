package kpi

import (
	"context"
	"time"

	"github.com/meridianops/salesdesk/internal/buscal"
	"github.com/meridianops/salesdesk/internal/meetings"
)

// Aggregator supplies raw per-person meeting totals over an instant
// range. This is the history path: discarded leads still count.
type Aggregator interface {
	AggregateRange(ctx context.Context, start, end time.Time) ([]meetings.PersonAggregate, error)
}

// MonthlyTarget is a person's business-month quota.
type MonthlyTarget struct {
	PersonID string `json:"person_id"`
	Meetings int    `json:"meetings"`
	Closes   int    `json:"closes"`
}

// TargetSource lists the configured monthly targets.
type TargetSource interface {
	ListMonthlyTargets(ctx context.Context) ([]MonthlyTarget, error)
}

// Service assembles reporting windows from the business calendar and
// merges entry sums with meeting aggregates.
type Service struct {
	repo       Repository
	aggregator Aggregator
	targets    TargetSource
	cal        *buscal.Calendar
	clock      buscal.Clock
}

// NewService wires the KPI reporting paths.
func NewService(repo Repository, aggregator Aggregator, targets TargetSource, cal *buscal.Calendar, clock buscal.Clock) *Service {
	if clock == nil {
		clock = buscal.SystemClock()
	}
	return &Service{repo: repo, aggregator: aggregator, targets: targets, cal: cal, clock: clock}
}

// Upsert validates and stores one day's counts.
func (s *Service) Upsert(ctx context.Context, e *Entry) (*Entry, error) {
	return s.repo.Upsert(ctx, e)
}

// WeeklyTargetRow is a monthly quota scaled to one week, rounded up so
// hitting every week clears the month.
type WeeklyTargetRow struct {
	PersonID string `json:"person_id"`
	Meetings int    `json:"meetings"`
	Closes   int    `json:"closes"`
}

// WeeklyReport is the Monday-anchored seven-day view.
type WeeklyReport struct {
	WeekStart        string            `json:"week_start"`
	WeekEndExclusive string            `json:"week_end_exclusive"`
	Label            string            `json:"label"`
	Entries          []*Entry          `json:"entries"`
	Totals           []PersonTotals    `json:"totals"`
	Targets          []WeeklyTargetRow `json:"targets,omitempty"`
}

// Weekly builds the report for the week containing at (zero means
// now), optionally narrowed to one person.
func (s *Service) Weekly(ctx context.Context, at time.Time, personID string) (*WeeklyReport, error) {
	if at.IsZero() {
		at = s.clock()
	}
	start := s.cal.StartOfWeek(s.cal.LocalDate(at))
	end := buscal.AddDays(start, 7)

	entries, err := s.repo.ListRange(ctx, personID, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.SumRange(ctx, personID, start.String(), end.String())
	if err != nil {
		return nil, err
	}

	report := &WeeklyReport{
		WeekStart:        start.String(),
		WeekEndExclusive: end.String(),
		Label:            buscal.RangeLabel(start, end),
		Entries:          entries,
		Totals:           totals,
	}
	if s.targets != nil {
		monthly, err := s.targets.ListMonthlyTargets(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range monthly {
			if personID != "" && t.PersonID != personID {
				continue
			}
			report.Targets = append(report.Targets, WeeklyTargetRow{
				PersonID: t.PersonID,
				Meetings: s.cal.WeeklyFromMonthly(t.Meetings, at),
				Closes:   s.cal.WeeklyFromMonthly(t.Closes, at),
			})
		}
	}
	return report, nil
}

// MonthlyRow merges one person's self-reported activity with their raw
// meeting totals and quota for the business month.
type MonthlyRow struct {
	PersonID       string       `json:"person_id"`
	Activity       PersonTotals `json:"activity"`
	Meetings       int          `json:"meetings"`
	ScoreSum       int          `json:"score_sum"`
	Closes         int          `json:"closes"`
	TargetMeetings int          `json:"target_meetings,omitempty"`
	TargetCloses   int          `json:"target_closes,omitempty"`
}

// MonthlyReport is the 26th-to-25th business-month view.
type MonthlyReport struct {
	MonthStart        string       `json:"month_start"`
	MonthEndExclusive string       `json:"month_end_exclusive"`
	Label             string       `json:"label"`
	Weeks             float64      `json:"weeks"`
	Rows              []MonthlyRow `json:"rows"`
}

// Monthly builds the report for the business month containing at
// (zero means now).
func (s *Service) Monthly(ctx context.Context, at time.Time) (*MonthlyReport, error) {
	if at.IsZero() {
		at = s.clock()
	}
	month := s.cal.BusinessMonth(at)
	rangeStart, rangeEnd := s.cal.BusinessMonthRange(at)

	totals, err := s.repo.SumRange(ctx, "", month.Start.String(), month.EndExclusive.String())
	if err != nil {
		return nil, err
	}

	rows := map[string]*MonthlyRow{}
	order := []string{}
	rowFor := func(personID string) *MonthlyRow {
		if row, ok := rows[personID]; ok {
			return row
		}
		row := &MonthlyRow{PersonID: personID}
		rows[personID] = row
		order = append(order, personID)
		return row
	}

	for _, t := range totals {
		rowFor(t.PersonID).Activity = t
	}

	if s.aggregator != nil {
		aggs, err := s.aggregator.AggregateRange(ctx, rangeStart, rangeEnd)
		if err != nil {
			return nil, err
		}
		for _, a := range aggs {
			row := rowFor(a.PersonID)
			row.Meetings = a.Meetings
			row.ScoreSum = a.ScoreSum
			row.Closes = a.Closes
		}
	}

	if s.targets != nil {
		targets, err := s.targets.ListMonthlyTargets(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if _, ok := rows[t.PersonID]; !ok {
				continue
			}
			row := rows[t.PersonID]
			row.TargetMeetings = t.Meetings
			row.TargetCloses = t.Closes
		}
	}

	report := &MonthlyReport{
		MonthStart:        month.Start.String(),
		MonthEndExclusive: month.EndExclusive.String(),
		Label:             buscal.RangeLabel(month.Start, month.EndExclusive),
		Weeks:             s.cal.WeeksInBusinessMonth(at),
	}
	for _, personID := range order {
		report.Rows = append(report.Rows, *rows[personID])
	}
	return report, nil
}
