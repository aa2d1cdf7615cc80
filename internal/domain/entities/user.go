package entities

import (
	"regexp"
	"time"

	apperrors "github.com/servesync/backend/pkg/errors"
)

// Role determines a user's access scope and the lifecycle transitions
// they are permitted to perform.
type Role string

const (
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the three known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller context supplied by the
// authentication collaborator. The core trusts it and performs no
// credential verification of its own.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// User represents a user in the system. Role is immutable after creation.
// Rating and CompletedJobs apply only to providers and are mutated solely
// as a side effect of booking completion.
type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	Role          Role      `json:"role" db:"role"`
	Phone         string    `json:"phone" db:"phone"`
	Rating        float64   `json:"rating,omitempty" db:"rating"`
	CompletedJobs int       `json:"completed_jobs,omitempty" db:"completed_jobs"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks structural invariants on the user
func (u *User) Validate() error {
	if u.Name == "" {
		return apperrors.NewValidationError("name", "name is required")
	}
	if u.Email == "" {
		return apperrors.NewValidationError("email", "email is required")
	}
	if !emailPattern.MatchString(u.Email) {
		return apperrors.NewValidationError("email", "email is not valid")
	}
	if !u.Role.Valid() {
		return apperrors.NewValidationError("role", "role must be user, provider or admin")
	}
	return nil
}
