// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the closed set of user roles. There is no separate staff or
// superuser flag: anything of that kind must be resolved into one of these
// values at the boundary.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Privileged reports whether the role may moderate other users' content.
func (r Role) Privileged() bool {
	return r == RoleModerator || r == RoleAdmin
}

// ConfirmationCodePlaceholder is stored before the first real code issuance.
const ConfirmationCodePlaceholder = "unset"

// User represents a registered identity. Authentication is passwordless: a
// rotating confirmation code is exchanged for an access token.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email            string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Role             Role      `gorm:"size:20;not null;default:user" json:"role"`
	ConfirmationCode string    `gorm:"size:255;not null;default:unset" json:"-"`
	Bio              string    `json:"bio"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
