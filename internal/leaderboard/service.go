package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridianops/salesdesk/internal/buscal"
	"github.com/meridianops/salesdesk/internal/meetings"
	"github.com/meridianops/salesdesk/internal/observability/metrics"
	"github.com/meridianops/salesdesk/pkg/logging"
)

// closeBonus is the points awarded per closed deal on top of the lead
// scores.
const closeBonus = 5

// Standing is one person's leaderboard row for a business month.
type Standing struct {
	Rank     int    `json:"rank"`
	PersonID string `json:"person_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Meetings int    `json:"meetings"`
	Closes   int    `json:"closes"`
}

// Board is the full standings for one business month.
type Board struct {
	MonthStart        string     `json:"month_start"`
	MonthEndExclusive string     `json:"month_end_exclusive"`
	Label             string     `json:"label"`
	Standings         []Standing `json:"standings"`
}

// Aggregator supplies raw per-person meeting totals, discarded leads
// included, so standings match historical KPI numbers.
type Aggregator interface {
	AggregateRange(ctx context.Context, start, end time.Time) ([]meetings.PersonAggregate, error)
}

// NameSource maps person ids to display names.
type NameSource interface {
	DisplayNames(ctx context.Context) (map[string]string, error)
}

// Service ranks the team over the current business month. Standings
// are cached in Redis keyed by month start; cache trouble degrades to
// a direct read and is never fatal.
type Service struct {
	aggregator Aggregator
	names      NameSource
	cache      *redis.Client
	ttl        time.Duration
	cal        *buscal.Calendar
	clock      buscal.Clock
	metrics    *metrics.LeaderboardMetrics
	logger     *logging.Logger
}

// NewService wires the leaderboard. cache may be nil to disable
// caching entirely.
func NewService(aggregator Aggregator, names NameSource, cache *redis.Client, ttl time.Duration, cal *buscal.Calendar, clock buscal.Clock, m *metrics.LeaderboardMetrics, logger *logging.Logger) *Service {
	if clock == nil {
		clock = buscal.SystemClock()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		aggregator: aggregator,
		names:      names,
		cache:      cache,
		ttl:        ttl,
		cal:        cal,
		clock:      clock,
		metrics:    m,
		logger:     logger,
	}
}

func cacheKey(monthStart buscal.Date) string {
	return "leaderboard:" + monthStart.String()
}

// Current returns the standings for the business month containing at
// (zero means now).
func (s *Service) Current(ctx context.Context, at time.Time) (*Board, error) {
	if at.IsZero() {
		at = s.clock()
	}
	month := s.cal.BusinessMonth(at)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(month.Start)).Result()
		switch {
		case err == nil:
			var board Board
			if jsonErr := json.Unmarshal([]byte(raw), &board); jsonErr == nil {
				s.metrics.ObserveCache("hit")
				return &board, nil
			}
			s.logger.Warn("leaderboard cache entry corrupt, recomputing", "key", cacheKey(month.Start))
			s.metrics.ObserveCache("corrupt")
		case err == redis.Nil:
			s.metrics.ObserveCache("miss")
		default:
			s.logger.Warn("leaderboard cache read failed", "error", err)
			s.metrics.ObserveCache("error")
		}
	}

	board, err := s.compute(ctx, at, month)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(board); err == nil {
			if err := s.cache.Set(ctx, cacheKey(month.Start), raw, s.ttl).Err(); err != nil {
				s.logger.Warn("leaderboard cache write failed", "error", err)
			}
		}
	}
	return board, nil
}

// Invalidate drops the cached standings for the month containing now.
// Called after meeting writes so ranks move immediately.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	month := s.cal.BusinessMonth(s.clock())
	if err := s.cache.Del(ctx, cacheKey(month.Start)).Err(); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", "error", err)
	}
}

func (s *Service) compute(ctx context.Context, at time.Time, month buscal.Month) (*Board, error) {
	rangeStart, rangeEnd := s.cal.BusinessMonthRange(at)
	aggs, err := s.aggregator.AggregateRange(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: aggregate: %w", err)
	}

	names := map[string]string{}
	if s.names != nil {
		if names, err = s.names.DisplayNames(ctx); err != nil {
			return nil, fmt.Errorf("leaderboard: names: %w", err)
		}
	}

	standings := make([]Standing, 0, len(aggs))
	for _, a := range aggs {
		standings = append(standings, Standing{
			PersonID: a.PersonID,
			Name:     names[a.PersonID],
			Points:   a.ScoreSum + closeBonus*a.Closes,
			Meetings: a.Meetings,
			Closes:   a.Closes,
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Closes > standings[j].Closes
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return &Board{
		MonthStart:        month.Start.String(),
		MonthEndExclusive: month.EndExclusive.String(),
		Label:             buscal.RangeLabel(month.Start, month.EndExclusive),
		Standings:         standings,
	}, nil
}
