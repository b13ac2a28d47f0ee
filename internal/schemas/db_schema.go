// Package schemas defines the data structures
package schemas

import (
	"strings"
	"time"
)

// Authority names as stored in the authorities table.
const (
	AuthorityAdmin = "ADMIN"
	AuthorityUser  = "USER"
)

// User represents the data model for an account in the system.
type User struct {
	ID            int64      `json:"id"`             // Stable surrogate key.
	Email         string     `json:"email"`          // Unique among non-deleted users.
	PasswordHash  string     `json:"-"`              // bcrypt digest of the current password.
	FirstName     *string    `json:"first_name"`     // Optional first name.
	LastName      *string    `json:"last_name"`      // Optional last name.
	Activated     bool       `json:"activated"`      // Whether the activation key was consumed.
	ActivatedDate *time.Time `json:"activated_date"` // Timestamp of the activation.
	ActivationKey *string    `json:"-"`              // Single-use activation key, nil once consumed.
	ResetKey      *string    `json:"-"`              // Single-use reset key, nil unless a reset is pending.
	ResetDate     *time.Time `json:"-"`              // Timestamp of the pending reset request.
	Deleted       bool       `json:"-"`              // Soft delete flag.
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ResetPending reports whether a password reset was requested and not completed yet.
func (u *User) ResetPending() bool {
	return u.ResetKey != nil
}

// Authority represents a named role.
type Authority struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserAuthority grants an authority to a user.
type UserAuthority struct {
	UserID      int64 `json:"user_id"`
	AuthorityID int64 `json:"authority_id"`
}

// UserUpdate describes a partial update of a user row. Nil fields are left untouched.
// The Clear flags set the nullable keys to NULL, the Match fields turn the update into a
// compare-and-set on the current key so a key can only be consumed once.
type UserUpdate struct {
	PasswordHash  *string
	FirstName     *string
	LastName      *string
	Activated     *bool
	ActivatedDate *time.Time

	ActivationKey      *string
	ClearActivationKey bool
	MatchActivationKey *string

	ResetKey      *string
	ResetDate     *time.Time
	ClearReset    bool
	MatchResetKey *string
}

// IsEmpty reports whether the update would not change any column.
func (u UserUpdate) IsEmpty() bool {
	return u.PasswordHash == nil && u.FirstName == nil && u.LastName == nil &&
		u.Activated == nil && u.ActivatedDate == nil &&
		u.ActivationKey == nil && !u.ClearActivationKey &&
		u.ResetKey == nil && u.ResetDate == nil && !u.ClearReset
}

// NormalizeEmail trims and lower-cases an email so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeAuthority upper-cases an authority name.
func NormalizeAuthority(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
