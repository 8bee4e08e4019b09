package domain

import "time"

// Role classifies a directory account. The set is closed: permission
// resolution treats any other value as having no capabilities at all.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a stored or submitted role string onto the closed enum.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleStaff, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the known enum values.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Status is the lifecycle state of an account. Frozen accounts never
// complete credential verification until an administrator unfreezes them.
type Status string

const (
	StatusActive Status = "active"
	StatusFrozen Status = "frozen"
)

type Account struct {
	ID             string // ULID
	Identifier     string // student/staff number; unique, immutable after creation
	SecretHash     string // argon2id encoded
	RealName       string
	Phone          string
	Role           Role
	College        string
	Status         Status
	FailedAttempts int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Active reports whether the account may attempt verification.
func (a Account) Active() bool { return a.Status == StatusActive }

// DefaultSecret derives the initial credential for an identifier: its
// trailing six characters, or the identifier itself when shorter. It is a
// pure function recomputed on demand and is never stored; login uses it to
// flag un-rotated initial credentials.
func DefaultSecret(identifier string) string {
	if len(identifier) >= 6 {
		return identifier[len(identifier)-6:]
	}
	return identifier
}
