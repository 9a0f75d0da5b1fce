package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the authorization level of an account
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleFake  Role = "FAKE" // generated accounts used by simulations
)

// ErrUnknownRole is returned when parsing an unrecognised role value
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a stored value into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleUser, RoleFake:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// User represents a registered account
type User struct {
	ID           int64     `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	Notification bool      `db:"notification"` // opted in to new-lottery emails
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return fullName(u.FirstName, u.LastName)
}

// IsAdmin returns true for administrator accounts
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin returns false for generated simulation accounts
func (u *User) CanLogin() bool {
	switch u.Role {
	case RoleAdmin, RoleUser:
		return true
	case RoleFake:
		return false
	default:
		return false
	}
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
