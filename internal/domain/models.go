// Package domain defines the core entities of the Taskflow dashboard BFA.
// These models are independent of the upstream API and represent the
// canonical data structures that flow through the filter engine and the
// temporal grouping code.
package domain

import (
	"strings"
)

// ============================================================
// Roles
// ============================================================

// Role is the fixed set of viewer roles known to the dashboard.
type Role string

const (
	RoleSuperAdmin              Role = "Super Admin"
	RoleSpecialAccess           Role = "Special Access"
	RoleManager                 Role = "Manager"
	RoleTerritorySalesManager   Role = "Territory Sales Manager"
	RoleTerritorySalesAssociate Role = "Territory Sales Associate"
	RoleUnknown                 Role = ""
)

// AllRoles lists every known role in privilege order.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleSpecialAccess,
	RoleManager,
	RoleTerritorySalesManager,
	RoleTerritorySalesAssociate,
}

// ParseRole maps an upstream role label onto a Role. Matching ignores case,
// spaces, dashes and underscores, so "SuperAdmin", "super_admin" and
// "Super Admin" are the same role. Unrecognised labels yield RoleUnknown.
func ParseRole(s string) Role {
	norm := normalizeRole(s)
	for _, r := range AllRoles {
		if normalizeRole(string(r)) == norm {
			return r
		}
	}
	switch norm {
	case "tsm":
		return RoleTerritorySalesManager
	case "tsa":
		return RoleTerritorySalesAssociate
	}
	return RoleUnknown
}

func normalizeRole(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// ============================================================
// User profile
// ============================================================

// UserProfile identifies the viewing actor. It is resolved once per request
// from the id supplied by the dashboard and never written back.
type UserProfile struct {
	UserID      string  `json:"userId"`
	ReferenceID string  `json:"referenceId"`
	Role        Role    `json:"role"`
	ManagerID   string  `json:"managerId,omitempty"`
	TSMID       string  `json:"tsmId,omitempty"`
	Firstname   string  `json:"firstname,omitempty"`
	Lastname    string  `json:"lastname,omitempty"`
	Email       string  `json:"email,omitempty"`
	Department  string  `json:"department,omitempty"`
	Company     string  `json:"company,omitempty"`
	TargetQuota float64 `json:"targetQuota,omitempty"`
}

// DisplayName returns "Firstname Lastname", trimmed.
func (p *UserProfile) DisplayName() string {
	return strings.TrimSpace(p.Firstname + " " + p.Lastname)
}

// UpstreamUser is the wire shape of GET /api/user?id=<id>.
type UpstreamUser struct {
	ID          string  `json:"_id"`
	ReferenceID string  `json:"ReferenceID"`
	Role        string  `json:"Role"`
	Manager     string  `json:"Manager"`
	TSM         string  `json:"TSM"`
	Firstname   string  `json:"Firstname"`
	Lastname    string  `json:"Lastname"`
	Email       string  `json:"Email"`
	Department  string  `json:"Department"`
	Company     string  `json:"Company"`
	TargetQuota float64 `json:"TargetQuota"`
}

// ToProfile converts the upstream user into a UserProfile.
func (u *UpstreamUser) ToProfile() *UserProfile {
	return &UserProfile{
		UserID:      u.ID,
		ReferenceID: u.ReferenceID,
		Role:        ParseRole(u.Role),
		ManagerID:   u.Manager,
		TSMID:       u.TSM,
		Firstname:   u.Firstname,
		Lastname:    u.Lastname,
		Email:       u.Email,
		Department:  u.Department,
		Company:     u.Company,
		TargetQuota: u.TargetQuota,
	}
}

// ============================================================
// Roster
// ============================================================

// UnknownAgent is the display name used when a record's reference id has no
// roster match.
const UnknownAgent = "Unknown"

// RosterEntry is one agent from the user roster, used to attach display
// names to records after filtering.
type RosterEntry struct {
	ReferenceID string `json:"ReferenceID"`
	Firstname   string `json:"Firstname"`
	Lastname    string `json:"Lastname"`
}

// Name returns the agent's display name.
func (e RosterEntry) Name() string {
	return strings.TrimSpace(e.Firstname + " " + e.Lastname)
}
