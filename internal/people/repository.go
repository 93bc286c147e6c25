package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository is the storage boundary for the staff directory and
// monthly targets.
type Repository interface {
	Create(ctx context.Context, req *CreatePersonRequest) (*Person, error)
	Get(ctx context.Context, id string) (*Person, error)
	List(ctx context.Context, activeOnly bool) ([]*Person, error)
	Deactivate(ctx context.Context, id string) error
	DisplayNames(ctx context.Context) (map[string]string, error)
	UpsertTarget(ctx context.Context, t *Target) (*Target, error)
	GetTarget(ctx context.Context, personID string) (*Target, error)
	ListTargets(ctx context.Context) ([]*Target, error)
}

const personColumns = `id, name, email, role, is_admin, active, created_at`

// PostgresRepository stores people and targets in the relational
// database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository initializes a repo backed by database/sql.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	if db == nil {
		panic("people: db required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new staff member.
func (r *PostgresRepository) Create(ctx context.Context, req *CreatePersonRequest) (*Person, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &Person{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Email:   req.Email,
		Role:    req.Role,
		IsAdmin: req.IsAdmin,
		Active:  true,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO persons (id, name, email, role, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, p.ID, p.Name, p.Email, p.Role, p.IsAdmin).Scan(&p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("people: insert person: %w", err)
	}
	return p, nil
}

// Get fetches one person.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Person, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+personColumns+` FROM persons WHERE id = $1
	`, id)
	return scanPerson(row)
}

// List returns the directory, newest last.
func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]*Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+personColumns+`
		FROM persons
		WHERE NOT $1 OR active
		ORDER BY created_at
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("people: list: %w", err)
	}
	defer rows.Close()

	var out []*Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("people: list rows: %w", err)
	}
	return out, nil
}

// Deactivate hides a person from active views without deleting their
// history.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE persons SET active = FALSE WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("people: deactivate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("people: deactivate rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DisplayNames maps every person id to a name, deactivated staff
// included so historical standings still show who did the work.
func (r *PostgresRepository) DisplayNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM persons`)
	if err != nil {
		return nil, fmt.Errorf("people: display names: %w", err)
	}
	defer rows.Close()

	names := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("people: scan display name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("people: display names rows: %w", err)
	}
	return names, nil
}

// UpsertTarget sets a person's monthly quota.
func (r *PostgresRepository) UpsertTarget(ctx context.Context, t *Target) (*Target, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO targets (person_id, meetings_monthly, closes_monthly)
		VALUES ($1, $2, $3)
		ON CONFLICT (person_id) DO UPDATE
		SET meetings_monthly = EXCLUDED.meetings_monthly,
		    closes_monthly = EXCLUDED.closes_monthly,
		    updated_at = now()
		RETURNING updated_at
	`, t.PersonID, t.MeetingsMonthly, t.ClosesMonthly).Scan(&t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("people: upsert target: %w", err)
	}
	return t, nil
}

// GetTarget fetches one person's quota.
func (r *PostgresRepository) GetTarget(ctx context.Context, personID string) (*Target, error) {
	var t Target
	err := r.db.QueryRowContext(ctx, `
		SELECT person_id, meetings_monthly, closes_monthly, updated_at
		FROM targets WHERE person_id = $1
	`, personID).Scan(&t.PersonID, &t.MeetingsMonthly, &t.ClosesMonthly, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("people: get target: %w", err)
	}
	return &t, nil
}

// ListTargets returns every configured quota.
func (r *PostgresRepository) ListTargets(ctx context.Context) ([]*Target, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT person_id, meetings_monthly, closes_monthly, updated_at
		FROM targets
		ORDER BY person_id
	`)
	if err != nil {
		return nil, fmt.Errorf("people: list targets: %w", err)
	}
	defer rows.Close()

	var out []*Target
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.PersonID, &t.MeetingsMonthly, &t.ClosesMonthly, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("people: scan target: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("people: list targets rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.IsAdmin, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("people: scan person: %w", err)
	}
	return &p, nil
}
