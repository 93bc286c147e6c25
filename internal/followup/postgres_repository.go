package followup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ownerChain resolves the responsible person in SQL with the same
// precedence as Item.Owner: explicit owner, attendee, booker, then the
// denormalized calendar-user fallback.
const ownerChain = `COALESCE(f.owner_person_id, m.attended_by_person_id, m.booked_by_person_id, m.booked_calendar_user_id)`

// eligibleWhere is the surfacing invariant for follow-up views.
const eligibleWhere = `m.discarded_at IS NULL
		  AND NOT m.is_closed
		  AND m.lead_score BETWEEN 1 AND 3
		  AND f.next_follow_up_at IS NOT NULL`

// querier is the slice of pgxpool.Pool the repository needs; pgxmock
// implements it for tests.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository reads and transitions follow-ups against the
// meetings and follow_ups tables. Every transition is one conditional
// UPDATE so cross-client races resolve atomically in the database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("followup: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithQuerier allows injecting mocks for tests.
func NewPostgresRepositoryWithQuerier(db querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListEligible fetches every lead matching the surfacing invariant,
// optionally narrowed by resolved owner and score range. Rows come
// back in due order; business-local priority sorting happens in the
// service because day buckets depend on the business timezone.
func (r *PostgresRepository) ListEligible(ctx context.Context, f Filter) ([]Item, error) {
	query := `
		SELECT m.id, m.occurs_at, m.booked_by_person_id, m.attended_by_person_id,
		       m.booked_calendar_user_id, m.lead_score, m.is_closed, m.discarded_at,
		       f.owner_person_id, f.last_followed_up_at, f.next_follow_up_at, f.updated_at
		FROM meetings m
		JOIN follow_ups f ON f.lead_id = m.id
		WHERE ` + eligibleWhere + `
		  AND ($1 = '' OR ` + ownerChain + `::text = $1)
		  AND ($2 = 0 OR m.lead_score >= $2)
		  AND ($3 = 0 OR m.lead_score <= $3)
		ORDER BY f.next_follow_up_at ASC
	`
	rows, err := r.db.Query(ctx, query, f.OwnerID, f.MinScore, f.MaxScore)
	if err != nil {
		return nil, fmt.Errorf("followup: list eligible: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("followup: scan eligible row: %w", err)
		}
		it.FollowUp.LeadID = it.Lead.ID
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("followup: list eligible rows: %w", err)
	}
	return items, nil
}

// Get loads one lead with its follow-up record regardless of
// eligibility, so callers can show current state after a failed
// transition.
func (r *PostgresRepository) Get(ctx context.Context, leadID string) (*Item, error) {
	query := `
		SELECT m.id, m.occurs_at, m.booked_by_person_id, m.attended_by_person_id,
		       m.booked_calendar_user_id, m.lead_score, m.is_closed, m.discarded_at,
		       f.owner_person_id, f.last_followed_up_at, f.next_follow_up_at, f.updated_at
		FROM meetings m
		JOIN follow_ups f ON f.lead_id = m.id
		WHERE m.id = $1
	`
	var it Item
	if err := scanItem(r.db.QueryRow(ctx, query, leadID), &it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("followup: get %s: %w", leadID, err)
	}
	it.FollowUp.LeadID = it.Lead.ID
	return &it, nil
}

// Claim takes ownership of an eligible lead and schedules its next
// contact, all in one statement. Prior ownership does not block a
// claim; claiming a lead you already own is the same successful
// update.
func (r *PostgresRepository) Claim(ctx context.Context, leadID, actorID string, nextDueAt time.Time) (*FollowUp, error) {
	query := `
		UPDATE follow_ups f
		SET owner_person_id = $2, next_follow_up_at = $3, updated_at = now()
		FROM meetings m
		WHERE f.lead_id = $1 AND m.id = f.lead_id
		  AND ` + eligibleWhere + `
		RETURNING f.lead_id, f.owner_person_id, f.last_followed_up_at, f.next_follow_up_at, f.updated_at
	`
	fu, err := r.scanFollowUp(r.db.QueryRow(ctx, query, leadID, actorID, nextDueAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMiss(ctx, leadID, "", ErrConflict)
		}
		return nil, fmt.Errorf("followup: claim %s: %w", leadID, err)
	}
	return fu, nil
}

// MarkFollowedUp records a completed contact and schedules the next
// one. Without override the update only matches when the actor is the
// resolved owner, keeping the ownership check inside the same atomic
// statement as the write.
func (r *PostgresRepository) MarkFollowedUp(ctx context.Context, leadID, actorID string, override bool, followedAt, nextDueAt time.Time) (*FollowUp, error) {
	query := `
		UPDATE follow_ups f
		SET last_followed_up_at = $3, next_follow_up_at = $4, updated_at = now()
		FROM meetings m
		WHERE f.lead_id = $1 AND m.id = f.lead_id
		  AND ` + eligibleWhere + `
		  AND ($5 OR ` + ownerChain + `::text = $2)
		RETURNING f.lead_id, f.owner_person_id, f.last_followed_up_at, f.next_follow_up_at, f.updated_at
	`
	fu, err := r.scanFollowUp(r.db.QueryRow(ctx, query, leadID, actorID, followedAt, nextDueAt, override))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMiss(ctx, leadID, actorID, ErrConflict)
		}
		return nil, fmt.Errorf("followup: mark followed up %s: %w", leadID, err)
	}
	return fu, nil
}

// Reassign sets the explicit owner without touching the schedule.
func (r *PostgresRepository) Reassign(ctx context.Context, leadID, newOwnerID string) (*FollowUp, error) {
	query := `
		UPDATE follow_ups
		SET owner_person_id = $2, updated_at = now()
		WHERE lead_id = $1
		RETURNING lead_id, owner_person_id, last_followed_up_at, next_follow_up_at, updated_at
	`
	fu, err := r.scanFollowUp(r.db.QueryRow(ctx, query, leadID, newOwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("followup: reassign %s: %w", leadID, err)
	}
	return fu, nil
}

// classifyMiss turns a zero-row conditional update into the right
// error: missing row, stale precondition, or (for owner-guarded
// updates) an actor who is not the resolved owner.
func (r *PostgresRepository) classifyMiss(ctx context.Context, leadID, actorID string, fallback error) error {
	it, err := r.Get(ctx, leadID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fallback
	}
	if actorID != "" && it.Eligible() && it.Owner() != actorID {
		return ErrNotOwner
	}
	return fallback
}

func (r *PostgresRepository) scanFollowUp(row pgx.Row) (*FollowUp, error) {
	var fu FollowUp
	if err := row.Scan(&fu.LeadID, &fu.OwnerPersonID, &fu.LastFollowedUpAt, &fu.NextFollowUpAt, &fu.UpdatedAt); err != nil {
		return nil, err
	}
	return &fu, nil
}

func scanItem(row pgx.Row, it *Item) error {
	return row.Scan(
		&it.Lead.ID,
		&it.Lead.OccursAt,
		&it.Lead.BookedByPersonID,
		&it.Lead.AttendedByPersonID,
		&it.Lead.BookedCalendarUserID,
		&it.Lead.LeadScore,
		&it.Lead.IsClosed,
		&it.Lead.DiscardedAt,
		&it.FollowUp.OwnerPersonID,
		&it.FollowUp.LastFollowedUpAt,
		&it.FollowUp.NextFollowUpAt,
		&it.FollowUp.UpdatedAt,
	)
}
