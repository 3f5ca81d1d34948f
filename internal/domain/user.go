package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

// ParseRole maps anything but an exact "mentor" to the student role.
func ParseRole(s string) Role {
	if Role(s) == RoleMentor {
		return RoleMentor
	}
	return RoleStudent
}

// User represents a registered participant identified by email.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail is the canonical form under which emails are stored and compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
