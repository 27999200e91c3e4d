package entity

import "github.com/google/uuid"

// Role is the authorization role carried in access tokens
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleParent Role = "parent"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleParent:
		return true
	}
	return false
}

// Actor identifies who performs an operation. It is built once per request
// from the verified token and passed explicitly to every usecase call.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a Actor) IsDoctor() bool { return a.Role == RoleDoctor }
func (a Actor) IsParent() bool { return a.Role == RoleParent }

// IsStaff is true for doctors and admins
func (a Actor) IsStaff() bool { return a.IsDoctor() || a.IsAdmin() }

// SystemActor is the admin identity of command line maintenance tasks. It
// has no user row, so audit entries carry no user id.
func SystemActor() Actor {
	return Actor{Role: RoleAdmin}
}
