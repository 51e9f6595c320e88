package domain

// Capability is a protected operation class.
type Capability string

const (
	CapViewObjects    Capability = "view_objects"
	CapEditObjects    Capability = "edit_objects"
	CapViewStatistics Capability = "view_statistics"
	CapManageUsers    Capability = "manage_users"
)

// capabilityRoles lists the roles granting each capability. A nil entry means
// the capability only needs a signed-in account, even one holding no roles.
var capabilityRoles = map[Capability][]Role{
	CapViewObjects:    nil,
	CapEditObjects:    {RoleModerator, RoleAdmin},
	CapViewStatistics: {RoleAdmin},
	CapManageUsers:    {RoleAdmin},
}

// Allows reports whether a signed-in caller holding s may perform c.
// Role-gated capabilities need at least one granting role, so an empty set
// gets only the signed-in ones.
func (s RoleSet) Allows(c Capability) bool {
	roles, known := capabilityRoles[c]
	if !known {
		return false
	}
	if roles == nil {
		return true
	}
	return s.HasAny(roles...)
}

// Capabilities returns every capability the set grants, for page rendering.
func (s RoleSet) Capabilities() map[Capability]bool {
	out := make(map[Capability]bool, len(capabilityRoles))
	for c := range capabilityRoles {
		out[c] = s.Allows(c)
	}
	return out
}
