package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	gate, err := NewGate(zap.NewNop())
	require.NoError(t, err)
	return gate
}

func TestAuthorizeMatrix(t *testing.T) {
	gate := newTestGate(t)

	cases := []struct {
		permission string
		role       Role
		want       bool
	}{
		{PermSalesCreate, RoleCashier, true},
		{PermSalesCreate, RoleViewer, false},
		{PermSalesCreate, RoleInventoryStaff, false},
		{PermSalesRefund, RoleManager, true},
		{PermSalesRefund, RoleCashier, false},
		{PermSalesView, RoleViewer, true},
		{PermProductsDelete, RoleManager, false},
		{PermProductsDelete, RoleAdmin, true},
		{PermProductsUpdate, RoleInventoryStaff, true},
		{PermUsersDelete, RoleManager, false},
		{PermTenantsView, RoleSuperAdmin, true},
		{PermTenantsView, RoleAdmin, false},
	}

	for _, tc := range cases {
		got := gate.Authorize(tc.permission, tc.role)
		assert.Equalf(t, tc.want, got, "Authorize(%s, %s)", tc.permission, tc.role)
	}
}

func TestAuthorizeUnknownPermissionDeniesEveryRole(t *testing.T) {
	gate := newTestGate(t)

	for _, role := range Roles {
		assert.Falsef(t, gate.Authorize("reports.export", role), "role %s", role)
		assert.Falsef(t, gate.Authorize("", role), "empty permission, role %s", role)
	}
}

func TestAuthorizeUnknownRoleDenied(t *testing.T) {
	gate := newTestGate(t)

	assert.False(t, gate.Authorize(PermSalesView, Role("owner")))
	assert.False(t, gate.Authorize(PermSalesView, Role("")))
}

func TestRolesAllowedCopies(t *testing.T) {
	first := RolesAllowed(PermSalesRefund)
	require.NotEmpty(t, first)
	first[0] = Role("mutated")

	second := RolesAllowed(PermSalesRefund)
	assert.NotEqual(t, first[0], second[0])
	assert.Nil(t, RolesAllowed("nope.nothing"))
}
