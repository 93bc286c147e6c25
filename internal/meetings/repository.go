package meetings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository is the storage boundary for meetings. The same table
// backs two read paths: ListActive hides discarded rows for views,
// AggregateRange reads raw rows so KPI history survives discards.
type Repository interface {
	Log(ctx context.Context, req *LogMeetingRequest, nextFollowUpAt time.Time) (*Meeting, error)
	Get(ctx context.Context, id string) (*Meeting, error)
	UpdateOutcome(ctx context.Context, id string, upd *OutcomeUpdate) (*Meeting, error)
	Close(ctx context.Context, id string) (*Meeting, error)
	Discard(ctx context.Context, id string, at time.Time) (*Meeting, error)
	ListActive(ctx context.Context, f ListFilter) ([]*Meeting, error)
	AggregateRange(ctx context.Context, start, end time.Time) ([]PersonAggregate, error)
}

const meetingColumns = `id, occurs_at, booked_by_person_id, attended_by_person_id,
	       booked_calendar_user_id, lead_score, is_closed, discarded_at, created_at, updated_at`

// PostgresRepository stores meetings in the relational database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository initializes a repo backed by database/sql.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	if db == nil {
		panic("meetings: db required")
	}
	return &PostgresRepository{db: db}
}

// Log inserts the meeting and its follow-up row in one transaction so
// a lead never exists without a scheduled first contact.
func (r *PostgresRepository) Log(ctx context.Context, req *LogMeetingRequest, nextFollowUpAt time.Time) (*Meeting, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("meetings: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	var createdAt, updatedAt time.Time
	err = tx.QueryRowContext(ctx, `
		INSERT INTO meetings (id, occurs_at, booked_by_person_id, booked_calendar_user_id, lead_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, id, req.OccursAt, req.BookedByPersonID, req.BookedCalendarUserID, req.LeadScore).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("meetings: insert meeting: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO follow_ups (lead_id, next_follow_up_at)
		VALUES ($1, $2)
	`, id, nextFollowUpAt); err != nil {
		return nil, fmt.Errorf("meetings: insert follow-up: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("meetings: commit log: %w", err)
	}

	return &Meeting{
		ID:                   id,
		OccursAt:             req.OccursAt,
		BookedByPersonID:     req.BookedByPersonID,
		BookedCalendarUserID: req.BookedCalendarUserID,
		LeadScore:            req.LeadScore,
		CreatedAt:            createdAt,
		UpdatedAt:            updatedAt,
	}, nil
}

// Get fetches one meeting regardless of discard state.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Meeting, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE id = $1
	`, id)
	return scanMeeting(row)
}

// UpdateOutcome adjusts score and attendance on an active meeting.
func (r *PostgresRepository) UpdateOutcome(ctx context.Context, id string, upd *OutcomeUpdate) (*Meeting, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE meetings
		SET lead_score = COALESCE($2, lead_score),
		    attended_by_person_id = COALESCE($3, attended_by_person_id),
		    updated_at = now()
		WHERE id = $1 AND discarded_at IS NULL
		RETURNING `+meetingColumns+`
	`, id, upd.LeadScore, upd.AttendedByPersonID)
	return scanMeeting(row)
}

// Close marks the lead won and clears its schedule so it drops out of
// the follow-up lists. Closing twice is a conflict the caller hears
// about.
func (r *PostgresRepository) Close(ctx context.Context, id string) (*Meeting, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("meetings: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		UPDATE meetings
		SET is_closed = TRUE, updated_at = now()
		WHERE id = $1 AND discarded_at IS NULL AND NOT is_closed
		RETURNING `+meetingColumns+`
	`, id)
	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, r.classifyCloseMiss(ctx, id)
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE follow_ups SET next_follow_up_at = NULL, updated_at = now() WHERE lead_id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("meetings: clear follow-up on close: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("meetings: commit close: %w", err)
	}
	return m, nil
}

// Discard soft-deletes the lead. Idempotent: re-discarding keeps the
// original timestamp and still reports success.
func (r *PostgresRepository) Discard(ctx context.Context, id string, at time.Time) (*Meeting, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE meetings
		SET discarded_at = COALESCE(discarded_at, $2), updated_at = now()
		WHERE id = $1
		RETURNING `+meetingColumns+`
	`, id, at)
	return scanMeeting(row)
}

// ListActive is the view read path: discarded rows never appear.
func (r *PostgresRepository) ListActive(ctx context.Context, f ListFilter) ([]*Meeting, error) {
	scores := f.Scores
	if len(scores) == 0 {
		scores = []int64{1, 2, 3}
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE discarded_at IS NULL
		  AND lead_score = ANY($1)
		  AND ($2::timestamptz IS NULL OR occurs_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurs_at < $3)
		ORDER BY occurs_at DESC
	`, pq.Array(scores), f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("meetings: list active: %w", err)
	}
	defer rows.Close()

	var out []*Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("meetings: list active rows: %w", err)
	}
	return out, nil
}

// AggregateRange is the history read path: per-person totals over a
// half-open occurs_at range, discarded rows included. The person is
// the attendee when set, otherwise the booker.
func (r *PostgresRepository) AggregateRange(ctx context.Context, start, end time.Time) ([]PersonAggregate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(attended_by_person_id, booked_by_person_id) AS person_id,
		       COUNT(*) AS meetings,
		       COALESCE(SUM(lead_score), 0) AS score_sum,
		       COUNT(*) FILTER (WHERE is_closed) AS closes
		FROM meetings
		WHERE occurs_at >= $1 AND occurs_at < $2
		GROUP BY 1
		ORDER BY 1
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("meetings: aggregate range: %w", err)
	}
	defer rows.Close()

	var out []PersonAggregate
	for rows.Next() {
		var a PersonAggregate
		if err := rows.Scan(&a.PersonID, &a.Meetings, &a.ScoreSum, &a.Closes); err != nil {
			return nil, fmt.Errorf("meetings: scan aggregate: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("meetings: aggregate rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) classifyCloseMiss(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM meetings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("meetings: classify close miss: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadyClosed
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*Meeting, error) {
	var m Meeting
	err := row.Scan(
		&m.ID,
		&m.OccursAt,
		&m.BookedByPersonID,
		&m.AttendedByPersonID,
		&m.BookedCalendarUserID,
		&m.LeadScore,
		&m.IsClosed,
		&m.DiscardedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("meetings: scan meeting: %w", err)
	}
	return &m, nil
}
