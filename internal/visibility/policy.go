// Package visibility decides which records a viewer may see and in what
// order. Everything here is pure: inputs are never mutated and the same
// inputs always produce the same output, so views can re-run it on every
// request.
package visibility

import (
	"slices"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
)

// Policy is the role clause of a view. Roles in Bypass see every record;
// the remaining roles see records whose ownership field for that role
// equals their reference id.
type Policy struct {
	Bypass []domain.Role
}

// DefaultPolicy lets super admins and special-access users see everything.
var DefaultPolicy = Policy{Bypass: []domain.Role{domain.RoleSuperAdmin, domain.RoleSpecialAccess}}

// SuperAdminOnlyPolicy is used by views where special access does not
// bypass ownership checks.
var SuperAdminOnlyPolicy = Policy{Bypass: []domain.Role{domain.RoleSuperAdmin}}

// Allows evaluates the role clause for one record.
func (p Policy) Allows(profile *domain.UserProfile, o domain.Ownership) bool {
	if profile == nil {
		return false
	}
	if slices.Contains(p.Bypass, profile.Role) {
		return true
	}
	// An unresolved reference id must not match records that are missing
	// their ownership field.
	if profile.ReferenceID == "" {
		return false
	}
	switch profile.Role {
	case domain.RoleManager:
		return o.Manager == profile.ReferenceID
	case domain.RoleTerritorySalesManager:
		return o.TSM == profile.ReferenceID
	case domain.RoleTerritorySalesAssociate:
		return o.ReferenceID == profile.ReferenceID
	}
	return false
}

// MatchesRole applies DefaultPolicy.
func MatchesRole(profile *domain.UserProfile, o domain.Ownership) bool {
	return DefaultPolicy.Allows(profile, o)
}
