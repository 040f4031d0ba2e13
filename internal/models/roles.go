package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role is the canonical role vocabulary for the whole application.
// The source system mixed several vocabularies per module; here there is one.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
	RoleMember  Role = "member"
	RoleViewer  Role = "viewer"
)

// AllRoles lists every assignable role.
var AllRoles = []Role{RoleAdmin, RoleOfficer, RoleMember, RoleViewer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOfficer, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Elevated reports whether the role may act on resources it does not own.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleOfficer
}

// OwnsOrElevated is the single ownership predicate used by every update
// path: elevated roles pass unconditionally, everyone else must own the
// resource.
func OwnsOrElevated(p *User, ownerID primitive.ObjectID) bool {
	if p == nil {
		return false
	}
	if p.Role.Elevated() {
		return true
	}
	return !ownerID.IsZero() && p.ID == ownerID
}
