// Package entity defines the domain entities for the auth feature.
package entity

import (
	"errors"
	"fmt"
)

// Role determines which dashboard a user lands on and which screens they may open.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleArtisan  Role = "artisan"
	RoleFarmer   Role = "farmer"
)

const (
	// CustomerDashboardPath is the default screen for customers.
	CustomerDashboardPath = "/dashboard/customer"
	// BusinessDashboardPath is the default screen for artisans and farmers.
	BusinessDashboardPath = "/dashboard/business"
)

// ErrInvalidRole is returned when a string is not one of the known roles.
var ErrInvalidRole = errors.New("invalid role")

// AllRoles lists every role; handy for routes open to any signed-in user.
var AllRoles = []Role{RoleCustomer, RoleArtisan, RoleFarmer}

// BusinessRoles lists the seller roles.
var BusinessRoles = []Role{RoleArtisan, RoleFarmer}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleArtisan, RoleFarmer:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// IsBusiness reports whether the role sells products.
func (r Role) IsBusiness() bool {
	switch r {
	case RoleArtisan, RoleFarmer:
		return true
	case RoleCustomer:
		return false
	default:
		return false
	}
}

// DefaultRoute returns the screen a user with this role is sent to
// when they open something their role does not allow.
func (r Role) DefaultRoute() string {
	switch r {
	case RoleCustomer:
		return CustomerDashboardPath
	case RoleArtisan, RoleFarmer:
		return BusinessDashboardPath
	default:
		return CustomerDashboardPath
	}
}

// In reports whether r appears in allowed.
func (r Role) In(allowed []Role) bool {
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
