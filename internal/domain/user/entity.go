package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve applications and recompute attendance
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

// Principal is the authenticated caller as carried in the access token.
type Principal struct {
	UserID     string
	EmployeeID *string
	Role       Role
}

// IsOwner checks if the caller is company owner
func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}

// Can checks the caller's role against the permission table
func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}
