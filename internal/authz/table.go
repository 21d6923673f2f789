// Package authz implements the static role-permission matrix, the fail-closed
// authorization gate and the role management hierarchy. The matrix is fixed at
// compile time and never writable at runtime; concurrent reads are safe.
package authz

// Role is a caller role within a tenant.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleCashier        Role = "cashier"
	RoleInventoryStaff Role = "inventory_staff"
	RoleViewer         Role = "viewer"
)

// Roles lists every known role, highest authority first.
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleManager,
	RoleCashier,
	RoleInventoryStaff,
	RoleViewer,
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleCashier, RoleInventoryStaff, RoleViewer:
		return true
	default:
		return false
	}
}

// Permission names. Everything an endpoint may require is listed here; a
// permission absent from the table below is denied for every role.
const (
	PermSalesCreate = "sales.create"
	PermSalesRefund = "sales.refund"
	PermSalesView   = "sales.view"

	PermProductsView   = "products.view"
	PermProductsCreate = "products.create"
	PermProductsUpdate = "products.update"
	PermProductsDelete = "products.delete"

	PermUsersView   = "users.view"
	PermUsersCreate = "users.create"
	PermUsersUpdate = "users.update"
	PermUsersDelete = "users.delete"

	PermSubscriptionView   = "subscription.view"
	PermSubscriptionManage = "subscription.manage"

	PermTenantsView = "tenants.view"

	PermPermissionsView = "permissions.view"
)

var everyone = []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleCashier, RoleInventoryStaff, RoleViewer}

// permissionTable is the authoritative permission → allowed-roles matrix.
var permissionTable = map[string][]Role{
	PermSalesCreate: {RoleSuperAdmin, RoleAdmin, RoleManager, RoleCashier},
	PermSalesRefund: {RoleSuperAdmin, RoleAdmin, RoleManager},
	PermSalesView:   everyone,

	PermProductsView:   everyone,
	PermProductsCreate: {RoleSuperAdmin, RoleAdmin, RoleManager, RoleInventoryStaff},
	PermProductsUpdate: {RoleSuperAdmin, RoleAdmin, RoleManager, RoleInventoryStaff},
	PermProductsDelete: {RoleSuperAdmin, RoleAdmin},

	PermUsersView:   {RoleSuperAdmin, RoleAdmin, RoleManager},
	PermUsersCreate: {RoleSuperAdmin, RoleAdmin, RoleManager},
	PermUsersUpdate: {RoleSuperAdmin, RoleAdmin, RoleManager},
	PermUsersDelete: {RoleSuperAdmin, RoleAdmin},

	PermSubscriptionView:   {RoleSuperAdmin, RoleAdmin},
	PermSubscriptionManage: {RoleSuperAdmin, RoleAdmin},

	PermTenantsView: {RoleSuperAdmin},

	PermPermissionsView: everyone,
}

// Table returns a copy of the permission matrix for read-only exposure to
// collaborators rendering UI affordances. The internal table is never handed
// out directly.
func Table() map[string][]Role {
	out := make(map[string][]Role, len(permissionTable))
	for perm, roles := range permissionTable {
		out[perm] = append([]Role(nil), roles...)
	}
	return out
}

// RolesAllowed returns the roles granted a permission, or nil when the
// permission is unknown.
func RolesAllowed(permission string) []Role {
	roles, ok := permissionTable[permission]
	if !ok {
		return nil
	}
	return append([]Role(nil), roles...)
}
