package kpi

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is the storage boundary for KPI entries.
type Repository interface {
	Upsert(ctx context.Context, e *Entry) (*Entry, error)
	SumRange(ctx context.Context, personID, startDate, endDateExclusive string) ([]PersonTotals, error)
	ListRange(ctx context.Context, personID, startDate, endDateExclusive string) ([]*Entry, error)
}

// PostgresRepository stores KPI entries keyed by (person_id, entry_date).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository initializes a repo backed by database/sql.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	if db == nil {
		panic("kpi: db required")
	}
	return &PostgresRepository{db: db}
}

// Upsert writes the day's counts, replacing any earlier submission for
// the same person and day.
func (r *PostgresRepository) Upsert(ctx context.Context, e *Entry) (*Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO kpi_entries (person_id, entry_date, calls, conversations, appointments_booked, sits, closes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (person_id, entry_date) DO UPDATE
		SET calls = EXCLUDED.calls,
		    conversations = EXCLUDED.conversations,
		    appointments_booked = EXCLUDED.appointments_booked,
		    sits = EXCLUDED.sits,
		    closes = EXCLUDED.closes,
		    updated_at = now()
		RETURNING updated_at
	`, e.PersonID, e.EntryDate, e.Calls, e.Conversations, e.AppointmentsBooked, e.Sits, e.Closes).Scan(&e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("kpi: upsert entry: %w", err)
	}
	return e, nil
}

// SumRange totals entries per person over [startDate, endDateExclusive).
// An empty personID covers everyone.
func (r *PostgresRepository) SumRange(ctx context.Context, personID, startDate, endDateExclusive string) ([]PersonTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT person_id,
		       COALESCE(SUM(calls), 0),
		       COALESCE(SUM(conversations), 0),
		       COALESCE(SUM(appointments_booked), 0),
		       COALESCE(SUM(sits), 0),
		       COALESCE(SUM(closes), 0)
		FROM kpi_entries
		WHERE entry_date >= $2 AND entry_date < $3
		  AND ($1 = '' OR person_id = $1)
		GROUP BY person_id
		ORDER BY person_id
	`, personID, startDate, endDateExclusive)
	if err != nil {
		return nil, fmt.Errorf("kpi: sum range: %w", err)
	}
	defer rows.Close()

	var out []PersonTotals
	for rows.Next() {
		var t PersonTotals
		if err := rows.Scan(&t.PersonID, &t.Calls, &t.Conversations, &t.AppointmentsBooked, &t.Sits, &t.Closes); err != nil {
			return nil, fmt.Errorf("kpi: scan totals: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kpi: sum range rows: %w", err)
	}
	return out, nil
}

// ListRange returns the raw day rows for the weekly grid.
func (r *PostgresRepository) ListRange(ctx context.Context, personID, startDate, endDateExclusive string) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT person_id, to_char(entry_date, 'YYYY-MM-DD'), calls, conversations, appointments_booked, sits, closes, updated_at
		FROM kpi_entries
		WHERE entry_date >= $2 AND entry_date < $3
		  AND ($1 = '' OR person_id = $1)
		ORDER BY entry_date, person_id
	`, personID, startDate, endDateExclusive)
	if err != nil {
		return nil, fmt.Errorf("kpi: list range: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PersonID, &e.EntryDate, &e.Calls, &e.Conversations, &e.AppointmentsBooked, &e.Sits, &e.Closes, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("kpi: scan entry: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kpi: list range rows: %w", err)
	}
	return out, nil
}
