package domain

import (
	"errors"
	"strings"
)

// Role is an actor capability claim carried per request.
type Role string

const (
	RoleCustomer    Role = "CUSTOMER"
	RoleCaterer     Role = "CATERER"
	RoleAdmin       Role = "ADMIN"
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleDeliveryGuy Role = "DELIVERY_GUY"
)

// ErrUnknownRole is returned for claims outside the known role set.
var ErrUnknownRole = errors.New("role is not recognised")

// ParseRole maps a claim onto a role. USER is accepted as an alias of CUSTOMER.
func ParseRole(raw string) (Role, error) {
	switch value := Role(strings.ToUpper(strings.TrimSpace(raw))); value {
	case "USER":
		return RoleCustomer, nil
	case RoleCustomer, RoleCaterer, RoleAdmin, RoleSuperAdmin, RoleDeliveryGuy:
		return value, nil
	default:
		return "", ErrUnknownRole
	}
}

// Roles is the set of roles held by one caller.
type Roles []Role

// ParseRoles converts raw claims, skipping values that are not roles.
func ParseRoles(raw []string) Roles {
	roles := make(Roles, 0, len(raw))
	for _, claim := range raw {
		role, err := ParseRole(claim)
		if err != nil {
			continue
		}
		if !roles.Has(role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// Has reports whether the set holds the role.
func (r Roles) Has(role Role) bool {
	for _, held := range r {
		if held == role {
			return true
		}
	}
	return false
}

// Intersects reports whether at least one role is held.
func (r Roles) Intersects(allowed Roles) bool {
	for _, role := range allowed {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// Strings returns the claim form of the set.
func (r Roles) Strings() []string {
	out := make([]string, 0, len(r))
	for _, role := range r {
		out = append(out, string(role))
	}
	return out
}

var adminRoles = Roles{RoleAdmin, RoleSuperAdmin}

var mutatingRoles = Roles{RoleCaterer, RoleAdmin, RoleSuperAdmin, RoleDeliveryGuy}

// Actor identifies the caller of a use case.
type Actor struct {
	ID    string
	Roles Roles
}

// CanMutate reports whether the actor holds any role that fires transitions.
func (a Actor) CanMutate() bool {
	return a.Roles.Intersects(mutatingRoles)
}

// IsAdmin reports whether the actor holds ADMIN or SUPER_ADMIN.
func (a Actor) IsAdmin() bool {
	return a.Roles.Intersects(adminRoles)
}
