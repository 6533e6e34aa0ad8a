// Package security provides the actor model and capability checks used at the
// start of every use case.
package security

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	appctx "github.com/harpreet-2146/FM-demo-sub001/internal/core/context"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
)

// Role is a coarse capability granted to a user.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleManufacturer Role = "MANUFACTURER"
	RoleRetailer     Role = "RETAILER"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(s)); r {
	case RoleAdmin, RoleManufacturer, RoleRetailer:
		return r, nil
	}
	return "", apperror.NewInvalidArgument("unknown role").WithDetail("role", s)
}

// Actor is the identity a use case runs on behalf of.
type Actor struct {
	ID    id.ID
	Roles []Role
}

// NewActor builds an actor with the given roles.
func NewActor(userID id.ID, roles ...Role) Actor {
	return Actor{ID: userID, Roles: roles}
}

// Has reports whether the actor holds role.
func (a Actor) Has(role Role) bool {
	return slices.Contains(a.Roles, role)
}

// IsAdmin is shorthand for Has(RoleAdmin).
func (a Actor) IsAdmin() bool {
	return a.Has(RoleAdmin)
}

// Is reports whether the actor is the user identified by userID.
func (a Actor) Is(userID id.ID) bool {
	return !id.IsNil(a.ID) && a.ID == userID
}

// Require fails with Unauthorized for an anonymous actor and Forbidden unless the
// actor holds at least one of roles.
func Require(actor Actor, roles ...Role) error {
	if id.IsNil(actor.ID) {
		return apperror.NewUnauthorized("authentication required")
	}
	for _, r := range roles {
		if actor.Has(r) {
			return nil
		}
	}
	return apperror.NewForbidden(fmt.Sprintf("one of roles %v required", roles)).
		WithDetail("required_roles", roles)
}

// RequireOwner fails with Forbidden unless the actor is ownerID or an admin.
func RequireOwner(actor Actor, ownerID id.ID, entity string) error {
	if actor.IsAdmin() || actor.Is(ownerID) {
		return nil
	}
	return apperror.NewForbidden(fmt.Sprintf("%s belongs to another user", entity)).
		WithDetail("entity", entity)
}

// ActorFromContext converts the authenticated user in ctx into an Actor.
func ActorFromContext(ctx context.Context) (Actor, error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return Actor{}, apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(user.UserID)
	if err != nil {
		return Actor{}, apperror.NewUnauthorized("invalid user identity")
	}
	roles := make([]Role, 0, len(user.Roles))
	for _, r := range user.Roles {
		if role, err := ParseRole(r); err == nil {
			roles = append(roles, role)
		}
	}
	return Actor{ID: userID, Roles: roles}, nil
}

// RequireParty fails with Forbidden unless the actor is an admin or one of parties.
func RequireParty(actor Actor, entity string, parties ...id.ID) error {
	if actor.IsAdmin() {
		return nil
	}
	for _, p := range parties {
		if actor.Is(p) {
			return nil
		}
	}
	return apperror.NewForbidden(fmt.Sprintf("%s belongs to another user", entity)).
		WithDetail("entity", entity)
}
