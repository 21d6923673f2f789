package authz

// roleLevel orders roles for strict comparisons. Cashier and inventory staff
// share a level: neither outranks the other.
var roleLevel = map[Role]int{
	RoleSuperAdmin:     5,
	RoleAdmin:          4,
	RoleManager:        3,
	RoleCashier:        2,
	RoleInventoryStaff: 2,
	RoleViewer:         1,
}

// HasHigherRole reports whether a strictly outranks b. Unknown roles rank
// below every known role.
func HasHigherRole(a, b Role) bool {
	return roleLevel[a] > roleLevel[b]
}

// CanManage reports whether managerRole may create, modify or deactivate a
// user holding targetRole.
func CanManage(managerRole, targetRole Role) bool {
	if !targetRole.Valid() {
		return false
	}
	switch managerRole {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return targetRole != RoleSuperAdmin
	case RoleManager:
		switch targetRole {
		case RoleCashier, RoleInventoryStaff, RoleViewer:
			return true
		default:
			return false
		}
	default:
		return false
	}
}

// CanChangeRole reports whether managerRole may move a user from currentRole
// to newRole. The actor must be able to manage both sides of the transition,
// which blocks privilege escalation and peer modification.
func CanChangeRole(managerRole, currentRole, newRole Role) bool {
	return CanManage(managerRole, currentRole) && CanManage(managerRole, newRole)
}
