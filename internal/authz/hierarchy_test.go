package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasHigherRole(t *testing.T) {
	assert.True(t, HasHigherRole(RoleSuperAdmin, RoleAdmin))
	assert.True(t, HasHigherRole(RoleAdmin, RoleManager))
	assert.True(t, HasHigherRole(RoleManager, RoleCashier))
	assert.True(t, HasHigherRole(RoleCashier, RoleViewer))

	// peers and self
	assert.False(t, HasHigherRole(RoleCashier, RoleInventoryStaff))
	assert.False(t, HasHigherRole(RoleInventoryStaff, RoleCashier))
	assert.False(t, HasHigherRole(RoleAdmin, RoleAdmin))

	// unknown roles rank below everything
	assert.False(t, HasHigherRole(Role("owner"), RoleViewer))
	assert.True(t, HasHigherRole(RoleViewer, Role("owner")))
}

func TestCanManage(t *testing.T) {
	for _, target := range Roles {
		assert.Truef(t, CanManage(RoleSuperAdmin, target), "super_admin manages %s", target)
	}

	assert.False(t, CanManage(RoleAdmin, RoleSuperAdmin))
	assert.True(t, CanManage(RoleAdmin, RoleAdmin))
	assert.True(t, CanManage(RoleAdmin, RoleViewer))

	assert.True(t, CanManage(RoleManager, RoleCashier))
	assert.True(t, CanManage(RoleManager, RoleInventoryStaff))
	assert.True(t, CanManage(RoleManager, RoleViewer))
	assert.False(t, CanManage(RoleManager, RoleManager))
	assert.False(t, CanManage(RoleManager, RoleAdmin))

	for _, actor := range []Role{RoleCashier, RoleInventoryStaff, RoleViewer} {
		for _, target := range Roles {
			assert.Falsef(t, CanManage(actor, target), "%s must not manage %s", actor, target)
		}
	}

	assert.False(t, CanManage(RoleAdmin, Role("owner")))
}

func TestCanChangeRoleBlocksEscalation(t *testing.T) {
	// a manager may move a cashier to viewer
	assert.True(t, CanChangeRole(RoleManager, RoleCashier, RoleViewer))
	// but may not grant admin
	assert.False(t, CanChangeRole(RoleManager, RoleCashier, RoleAdmin))
	// and may not touch an admin at all
	assert.False(t, CanChangeRole(RoleManager, RoleAdmin, RoleViewer))

	assert.False(t, CanChangeRole(RoleAdmin, RoleSuperAdmin, RoleAdmin))
	assert.True(t, CanChangeRole(RoleAdmin, RoleManager, RoleCashier))
}
