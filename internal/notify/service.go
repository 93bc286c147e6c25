package notify

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/meridianops/salesdesk/internal/buscal"
	"github.com/meridianops/salesdesk/internal/followup"
	"github.com/meridianops/salesdesk/internal/observability/metrics"
	"github.com/meridianops/salesdesk/internal/people"
	"github.com/meridianops/salesdesk/pkg/logging"
)

var digestTracer = otel.Tracer("salesdesk/reminders")

// FollowUpLister supplies the prioritized due list.
type FollowUpLister interface {
	ListDue(ctx context.Context, f followup.Filter) ([]followup.DueItem, error)
}

// PersonDirectory resolves owners to people so digests reach a real
// inbox.
type PersonDirectory interface {
	Get(ctx context.Context, id string) (*people.Person, error)
}

// Service emails each owner a digest of their overdue follow-ups.
// Runs only when an admin asks for it; there is no background
// scheduler.
type Service struct {
	followUps FollowUpLister
	directory PersonDirectory
	email     EmailSender
	cal       *buscal.Calendar
	clock     buscal.Clock
	metrics   *metrics.ReminderMetrics
	logger    *logging.Logger
}

// NewService wires the overdue digest.
func NewService(followUps FollowUpLister, directory PersonDirectory, email EmailSender, cal *buscal.Calendar, clock buscal.Clock, m *metrics.ReminderMetrics, logger *logging.Logger) *Service {
	if clock == nil {
		clock = buscal.SystemClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		followUps: followUps,
		directory: directory,
		email:     email,
		cal:       cal,
		clock:     clock,
		metrics:   m,
		logger:    logger,
	}
}

// DigestResult summarizes one run.
type DigestResult struct {
	Owners       int `json:"owners"`
	OverdueLeads int `json:"overdue_leads"`
	EmailsSent   int `json:"emails_sent"`
	EmailsFailed int `json:"emails_failed"`
	Unresolvable int `json:"unresolvable"`
}

// RunOverdueDigest groups overdue follow-ups by resolved owner and
// sends each owner one email. Send failures are counted, logged, and
// do not stop the run.
func (s *Service) RunOverdueDigest(ctx context.Context) (*DigestResult, error) {
	ctx, span := digestTracer.Start(ctx, "reminders.overdue_digest")
	defer span.End()

	due, err := s.followUps.ListDue(ctx, followup.Filter{})
	if err != nil {
		s.metrics.ObserveDigestRun(err)
		return nil, fmt.Errorf("notify: list due follow-ups: %w", err)
	}

	byOwner := map[string][]followup.DueItem{}
	for _, item := range due {
		if item.State.Urgency != followup.UrgencyOverdue {
			continue
		}
		byOwner[item.OwnerPersonID] = append(byOwner[item.OwnerPersonID], item)
	}

	result := &DigestResult{Owners: len(byOwner)}
	for ownerID, items := range byOwner {
		result.OverdueLeads += len(items)

		if ownerID == "" {
			result.Unresolvable += len(items)
			s.logger.Warn("overdue leads with no resolvable owner", "count", len(items))
			continue
		}
		person, err := s.directory.Get(ctx, ownerID)
		if err != nil || person.Email == "" {
			result.Unresolvable += len(items)
			s.logger.Warn("cannot email overdue digest", "owner_id", ownerID, "error", err)
			continue
		}

		msg := EmailMessage{
			To:      person.Email,
			ToName:  person.Name,
			Subject: fmt.Sprintf("%d overdue follow-up(s) waiting on you", len(items)),
			Body:    s.digestBody(person.Name, items),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			result.EmailsFailed++
			s.metrics.ObserveEmail(err)
			s.logger.Error("digest email failed", "owner_id", ownerID, "error", err)
			continue
		}
		result.EmailsSent++
		s.metrics.ObserveEmail(nil)
	}

	s.metrics.ObserveDigestRun(nil)
	s.logger.Info("overdue digest complete",
		"owners", result.Owners,
		"overdue_leads", result.OverdueLeads,
		"emails_sent", result.EmailsSent,
		"emails_failed", result.EmailsFailed,
	)
	return result, nil
}

func (s *Service) digestBody(name string, items []followup.DueItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThese leads are overdue for a follow-up:\n\n", name)
	for _, item := range items {
		meetingDay := s.cal.LocalDate(item.Lead.OccursAt)
		fmt.Fprintf(&b, "- Lead %s (score %d, met %s): %d day(s) late\n",
			item.Lead.ID, item.Lead.LeadScore, meetingDay, item.State.DaysLate)
	}
	b.WriteString("\nClaim or follow up in Salesdesk to clear them.\n")
	return b.String()
}
