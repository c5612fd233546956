package user

type Permission string

const (
	// Attendance
	PermissionAttendanceViewOwn   Permission = "attendance.view_own"
	PermissionAttendanceViewAll   Permission = "attendance.view_all"
	PermissionAttendanceRecompute Permission = "attendance.recompute"

	// Applications
	PermissionApplicationCreate  Permission = "application.create"
	PermissionApplicationApprove Permission = "application.approve"
	PermissionApplicationViewAll Permission = "application.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceRecompute,
		PermissionApplicationCreate,
		PermissionApplicationApprove,
		PermissionApplicationViewAll,
	},
	RoleManager: {
		// Manager can approve and view team data
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceRecompute,
		PermissionApplicationCreate,
		PermissionApplicationApprove,
	},
	RoleEmployee: {
		// Employee has basic access; any employee may be a checker
		PermissionAttendanceViewOwn,
		PermissionApplicationCreate,
		PermissionApplicationApprove,
	},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
