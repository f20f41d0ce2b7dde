package model

// Role is the closed set of principal roles.  Authorization decisions go
// through Permits rather than comparing role strings in handlers.
type Role string

const (
    RoleRider      Role = "rider"
    RoleAdmin      Role = "admin"
    RoleSuperAdmin Role = "superadmin"
)

// Action names a capability a role may or may not hold.
type Action string

const (
    // ActionRequestPass covers requesting a pass and viewing one's own passes.
    ActionRequestPass Action = "pass:request"
    // ActionDecidePasses covers approving/rejecting passes and listing all passes.
    ActionDecidePasses Action = "pass:decide"
    // ActionManageUsers covers rider account CRUD.
    ActionManageUsers Action = "user:manage"
    // ActionManageAdmins covers admin account CRUD (superadmin only).
    ActionManageAdmins Action = "admin:manage"
)

// Permits reports whether the role holds the given capability.
func (r Role) Permits(a Action) bool {
    switch a {
    case ActionRequestPass:
        return r == RoleRider
    case ActionDecidePasses, ActionManageUsers:
        return r == RoleAdmin || r == RoleSuperAdmin
    case ActionManageAdmins:
        return r == RoleSuperAdmin
    }
    return false
}

// ValidAdminRole reports whether s names a role assignable to an admin
// account.  Rider is not assignable through the admin CRUD surface.
func ValidAdminRole(s string) bool {
    return Role(s) == RoleAdmin || Role(s) == RoleSuperAdmin
}
