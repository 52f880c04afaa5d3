package domain

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Role is an actor role token.
type Role string

const (
	RoleAdminLead      Role = "admin_lead"
	RoleAdminTeam      Role = "admin_team"
	RoleProjectLead    Role = "project_lead"
	RoleInspector      Role = "inspector"
	RoleDrafter        Role = "drafter"
	RoleHeadConsultant Role = "head_consultant"
	RoleClient         Role = "client"
)

var knownRoles = []Role{
	RoleAdminLead, RoleAdminTeam, RoleProjectLead, RoleInspector,
	RoleDrafter, RoleHeadConsultant, RoleClient,
}

// TeamRoles are the roles that can be granted per project through a team assignment.
var TeamRoles = []Role{RoleInspector, RoleDrafter, RoleProjectLead, RoleAdminTeam, RoleAdminLead}

// ParseRole validates a raw role token.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(raw))
	if !slices.Contains(knownRoles, role) {
		return "", ErrValidation("unknown role " + quote(raw))
	}
	return role, nil
}

// IsTeamRole reports whether r can be assigned on a project.
func (r Role) IsTeamRole() bool {
	return slices.Contains(TeamRoles, r)
}

// Actor is the caller of a workflow operation. GlobalRoles come from the
// access token and apply to every project; project roles are resolved from
// team assignments by the services.
type Actor struct {
	ID          uuid.UUID
	GlobalRoles []Role
}

// projectWideRoles apply to every project when carried in the access token.
// The remaining roles only count through a team assignment.
var projectWideRoles = []Role{RoleAdminLead, RoleAdminTeam, RoleHeadConsultant}

// HasGlobalRole reports whether the actor holds role on every project.
func (a Actor) HasGlobalRole(role Role) bool {
	return slices.Contains(projectWideRoles, role) && slices.Contains(a.GlobalRoles, role)
}

// ProjectWideRoles returns the token roles that apply to every project.
func (a Actor) ProjectWideRoles() []Role {
	var out []Role
	for _, role := range a.GlobalRoles {
		if slices.Contains(projectWideRoles, role) {
			out = append(out, role)
		}
	}
	return out
}

// IsAdmin reports whether the actor is a global admin_lead or admin_team.
func (a Actor) IsAdmin() bool {
	return a.HasGlobalRole(RoleAdminLead) || a.HasGlobalRole(RoleAdminTeam)
}

// RolesFromStrings converts token claims into roles, dropping unknown values.
func RolesFromStrings(values []string) []Role {
	out := make([]Role, 0, len(values))
	for _, v := range values {
		if role, err := ParseRole(v); err == nil {
			out = append(out, role)
		}
	}
	return out
}

// MergeRoles returns the union of the given role sets, preserving first-seen order.
func MergeRoles(sets ...[]Role) []Role {
	var out []Role
	for _, set := range sets {
		for _, role := range set {
			if !slices.Contains(out, role) {
				out = append(out, role)
			}
		}
	}
	return out
}

func hasAnyRole(held []Role, allowed []Role) (Role, bool) {
	for _, role := range held {
		if slices.Contains(allowed, role) {
			return role, true
		}
	}
	return "", false
}

func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
