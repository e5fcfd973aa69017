package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength    = 254
	MaxFullNameLength = 100
)

// Role is the privilege tier of an account. Tiers are totally ordered:
// member < admin < super_admin.
type Role string

// Role constants
const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleMember, RoleAdmin, RoleSuperAdmin}

// RoleLabels maps roles to their display names.
var RoleLabels = map[Role]string{
	RoleMember:     "Member",
	RoleAdmin:      "Admin Team",
	RoleSuperAdmin: "General Secretary",
}

// roleRank orders the tiers. Unknown roles are absent and rank below every tier.
var roleRank = map[Role]int{
	RoleMember:     1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmptyFullName    = errors.New("full name cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: member, admin, super_admin")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Account holds state for the Account concept. Each account carries exactly
// one role at all times.
type Account struct {
	ID                     string
	Email                  string
	FullName               string
	PasswordHash           string
	Role                   Role
	CreatedAt              time.Time
	FailedLogins           int
	LockedUntil            time.Time
	PasswordChangeRequired bool
}

// HasRole reports whether the actual role meets the required tier.
// Unknown or empty roles fail every check (fail-closed).
// INVARIANT: no side effects
func HasRole(actual, required Role) bool {
	ar, ok := roleRank[actual]
	if !ok {
		return false
	}
	rr, ok := roleRank[required]
	if !ok {
		return false
	}
	return ar >= rr
}

// IsValidRole returns true if role is one of the closed role set.
func IsValidRole(role Role) bool {
	_, ok := roleRank[role]
	return ok
}

// Label returns the display name for the role, or the raw value if unknown.
func (r Role) Label() string {
	if label, ok := RoleLabels[r]; ok {
		return label
	}
	return string(r)
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(a.FullName) == "" {
		return ErrEmptyFullName
	}
	if len(a.FullName) > MaxFullNameLength {
		return errors.New("full name cannot exceed 100 characters")
	}
	if !IsValidRole(a.Role) {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext))
	if err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked() bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return time.Now().Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after 5 failures.
// PRE: Account exists
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (a *Account) RecordFailedLogin() {
	a.FailedLogins++
	if a.FailedLogins >= 5 {
		a.LockedUntil = time.Now().Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
// PRE: Account exists
// POST: FailedLogins is 0, LockedUntil is zero
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsAdmin returns true if the account has admin tier or above.
// INVARIANT: Account fields are not mutated
func (a *Account) IsAdmin() bool {
	return HasRole(a.Role, RoleAdmin)
}

// IsSuperAdmin returns true if the account has the super_admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsSuperAdmin() bool {
	return HasRole(a.Role, RoleSuperAdmin)
}
