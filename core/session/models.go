package session

import "errors"

// Persisted keys, one namespace per dashboard client.
const (
	KeyToken    = "token"
	KeyUserType = "userType"
	KeyOrgID    = "orgId"
)

// Roles
const (
	RoleSuperAdmin Role = "superAdmin" // platform-wide access -> SUPER-ADMIN PORTAL
	RoleOrgAdmin   Role = "orgAdmin"   // single-organization access -> ORG-ADMIN PORTAL
	RoleNone       Role = ""           // unauthenticated
)

var (
	// errors
	ErrInvalidRole = errors.New("invalid role")
	ErrNotFound    = errors.New("session not found")
)

type Role string

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOrgAdmin, RoleNone:
		return true
	}
	return false
}

func (r Role) Authenticated() bool {
	return r == RoleSuperAdmin || r == RoleOrgAdmin
}

// Session is the authoritative record of who is using a dashboard client.
type Session struct {
	Role              Role   `json:"role"`
	OrganizationScope string `json:"organization_scope,omitempty"`
	AuthToken         string `json:"-"`
}

// Authenticated reports whether the session may access a protected view at all.
// A role without a token is invalid and counts as unauthenticated.
func (s Session) Authenticated() bool {
	return s.AuthToken != "" && s.Role.Authenticated()
}

func (s Session) IsSuperAdmin() bool {
	return s.Authenticated() && s.Role == RoleSuperAdmin
}

func (s Session) IsOrgAdmin() bool {
	return s.Authenticated() && s.Role == RoleOrgAdmin
}

// Change is a partial session mutation applied transactionally by Store.Apply.
// Nil fields are left untouched.
type Change struct {
	Token *string
	Role  *Role
	Scope *string
}

// apply returns the next session state with the invariants enforced:
// whenever the role lands on anything but orgAdmin, the organization scope is
// cleared in the same step. The scope alone may be set ahead of the role
// during a login flow, so a scope-only change is never repaired away.
func (ch Change) apply(cur Session) (Session, error) {
	next := cur
	if ch.Token != nil {
		next.AuthToken = *ch.Token
	}
	if ch.Scope != nil {
		next.OrganizationScope = *ch.Scope
	}
	if ch.Role != nil {
		if !ch.Role.Valid() {
			return cur, ErrInvalidRole
		}
		next.Role = *ch.Role
		if next.Role != RoleOrgAdmin {
			next.OrganizationScope = ""
		}
	}
	return next, nil
}
