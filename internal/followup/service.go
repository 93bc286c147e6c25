package followup

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/meridianops/salesdesk/internal/buscal"
	"github.com/meridianops/salesdesk/internal/observability/metrics"
	"github.com/meridianops/salesdesk/pkg/logging"
)

var tracer = otel.Tracer("salesdesk/followup")

// Service applies the follow-up scheduling rules on top of the
// repository: every successful contact or claim pushes the next due
// instant out by the configured interval (three days by default).
type Service struct {
	repo     Repository
	cal      *buscal.Calendar
	clock    buscal.Clock
	interval time.Duration
	metrics  *metrics.FollowUpMetrics
	logger   *logging.Logger
}

// NewService wires the follow-up rules to storage. A nil clock falls
// back to the wall clock; a nil metrics receiver is safe to observe.
func NewService(repo Repository, cal *buscal.Calendar, clock buscal.Clock, interval time.Duration, m *metrics.FollowUpMetrics, logger *logging.Logger) *Service {
	if clock == nil {
		clock = buscal.SystemClock()
	}
	if interval <= 0 {
		interval = 72 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, cal: cal, clock: clock, interval: interval, metrics: m, logger: logger}
}

// ListDue returns the eligible follow-ups as prioritized rows: derived
// urgency, resolved owner, most overdue first.
func (s *Service) ListDue(ctx context.Context, f Filter) ([]DueItem, error) {
	items, err := s.repo.ListEligible(ctx, f)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	SortByPriority(items, s.cal, now)
	due := make([]DueItem, 0, len(items))
	for _, it := range items {
		due = append(due, DueItem{
			Item:          it,
			State:         Classify(it.FollowUp, s.cal, now),
			OwnerPersonID: it.Owner(),
		})
	}
	return due, nil
}

// Get returns one lead with its derived state.
func (s *Service) Get(ctx context.Context, leadID string) (*DueItem, error) {
	it, err := s.repo.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return &DueItem{
		Item:          *it,
		State:         Classify(it.FollowUp, s.cal, s.clock()),
		OwnerPersonID: it.Owner(),
	}, nil
}

// Claim makes the actor the owner and schedules the next contact one
// interval out. Claiming a lead the actor already owns succeeds
// without complaint.
func (s *Service) Claim(ctx context.Context, leadID, actorID string) (*FollowUp, error) {
	ctx, span := tracer.Start(ctx, "followup.claim")
	defer span.End()

	now := s.clock()
	fu, err := s.repo.Claim(ctx, leadID, actorID, now.Add(s.interval))
	s.metrics.ObserveTransition("claim", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("lead claimed", "lead_id", leadID, "owner_id", actorID, "next_due", fu.NextFollowUpAt)
	return fu, nil
}

// MarkFollowedUp records a contact now and schedules the next one.
// Only the resolved owner may call it unless override is set (the
// admin path).
func (s *Service) MarkFollowedUp(ctx context.Context, leadID, actorID string, override bool) (*FollowUp, error) {
	ctx, span := tracer.Start(ctx, "followup.mark_followed_up")
	defer span.End()

	now := s.clock()
	fu, err := s.repo.MarkFollowedUp(ctx, leadID, actorID, override, now, now.Add(s.interval))
	s.metrics.ObserveTransition("follow_up", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("lead followed up", "lead_id", leadID, "actor_id", actorID, "next_due", fu.NextFollowUpAt)
	return fu, nil
}

// Reassign hands the lead to a new owner without moving its schedule.
func (s *Service) Reassign(ctx context.Context, leadID, newOwnerID string) (*FollowUp, error) {
	ctx, span := tracer.Start(ctx, "followup.reassign")
	defer span.End()

	if newOwnerID == "" {
		return nil, ErrInvalidOwner
	}
	fu, err := s.repo.Reassign(ctx, leadID, newOwnerID)
	s.metrics.ObserveTransition("reassign", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("lead reassigned", "lead_id", leadID, "owner_id", newOwnerID)
	return fu, nil
}
