// Package access implements the role-based access policy.
//
// All permission decisions in the API go through the single Decide function.
// The policy is a table keyed by (resource class, action kind) so catalog,
// review and comment rules read as rows, not per-resource conditionals.
package access

import (
	"critica/internal/models"
)

// Actor describes the caller a decision is made for.
type Actor struct {
	ID            uint
	Role          models.Role
	Authenticated bool
}

// Resource classifies what the action targets.
type Resource int

const (
	// Catalog covers categories, genres and titles.
	Catalog Resource = iota
	// Content covers reviews and comments.
	Content
	// SelfProfile covers the caller's own user record.
	SelfProfile
	// UserAdmin covers administration of other users.
	UserAdmin
)

// Kind classifies the action itself.
type Kind int

const (
	// Read is any safe access.
	Read Kind = iota
	// Create adds a new object.
	Create
	// WriteObject updates or deletes an existing object.
	WriteObject
)

// Action is a request the policy decides on. Owned reports whether the
// actor authored the target object; it only matters for WriteObject on
// Content.
type Action struct {
	Resource Resource
	Kind     Kind
	Owned    bool
}

// requirement is what a policy row demands of the actor.
type requirement int

const (
	anyone requirement = iota
	authenticated
	ownerOrPrivileged
	admin
	denied
)

type policyKey struct {
	resource Resource
	kind     Kind
}

// policy is the complete access table. Moderators deliberately do NOT
// appear in catalog rows: catalog writes are admin-only.
var policy = map[policyKey]requirement{
	{Catalog, Read}:        anyone,
	{Catalog, Create}:      admin,
	{Catalog, WriteObject}: admin,

	{Content, Read}:        anyone,
	{Content, Create}:      authenticated,
	{Content, WriteObject}: ownerOrPrivileged,

	{SelfProfile, Read}:        authenticated,
	{SelfProfile, Create}:      denied, // identities are created via signup only
	{SelfProfile, WriteObject}: authenticated,

	{UserAdmin, Read}:        admin,
	{UserAdmin, Create}:      admin,
	{UserAdmin, WriteObject}: admin,
}

// Decide evaluates the policy for the actor and action. It returns nil when
// the action is allowed, an authentication error when the actor is
// anonymous but must not be, and a permission error otherwise. Existence of
// the target object is irrelevant here: denial never leaks whether the
// object exists.
func Decide(actor Actor, action Action) error {
	req, ok := policy[policyKey{action.Resource, action.Kind}]
	if !ok {
		return models.NewPermissionError("Action not permitted")
	}

	switch req {
	case anyone:
		return nil
	case authenticated:
		if !actor.Authenticated {
			return models.NewAuthenticationError("", "Authentication required")
		}
		return nil
	case ownerOrPrivileged:
		if !actor.Authenticated {
			return models.NewAuthenticationError("", "Authentication required")
		}
		if action.Owned || actor.Role.Privileged() {
			return nil
		}
		return models.NewPermissionError("You do not have permission to modify this object")
	case admin:
		if !actor.Authenticated {
			return models.NewAuthenticationError("", "Authentication required")
		}
		if actor.Role == models.RoleAdmin {
			return nil
		}
		return models.NewPermissionError("Administrator access required")
	default:
		return models.NewPermissionError("Action not permitted")
	}
}
