package people

import "time"

// Role buckets staff into the two sales functions plus admins.
type Role string

const (
	RoleSetter Role = "setter"
	RoleCloser Role = "closer"
	RoleAdmin  Role = "admin"
)

func validRole(r Role) bool {
	switch r {
	case RoleSetter, RoleCloser, RoleAdmin:
		return true
	}
	return false
}

// Person is a staff member. Read-mostly: the follow-up and KPI paths
// only ever resolve names, emails, and the admin flag.
type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsAdmin   bool      `json:"is_admin"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePersonRequest adds a staff member to the directory.
type CreatePersonRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

// Validate checks required fields.
func (r *CreatePersonRequest) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if !validRole(r.Role) {
		return ErrInvalidRole
	}
	return nil
}

// Target is a person's business-month quota. Weekly equivalents are
// derived from the business calendar, never stored.
type Target struct {
	PersonID        string    `json:"person_id"`
	MeetingsMonthly int       `json:"meetings_monthly"`
	ClosesMonthly   int       `json:"closes_monthly"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate rejects negative quotas.
func (t *Target) Validate() error {
	if t.MeetingsMonthly < 0 || t.ClosesMonthly < 0 {
		return ErrNegativeTarget
	}
	return nil
}
