// Package tenantctx carries the resolved caller identity and tenant scope
// through request contexts. Every tenant-scoped query downstream reads its
// tenant id from here; there is no ambient cross-tenant path.
package tenantctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type keyType string

const (
	tenantIDKey keyType = "tenant_id"
	identityKey keyType = "identity"
)

// AllTenants is the sentinel tenant id attached to super_admin identities.
const AllTenants snowflake.ID = 0

// Identity is the resolved caller bound to a request.
type Identity struct {
	UserID   snowflake.ID
	TenantID snowflake.ID
	Role     string
}

// IsGlobal reports whether the identity carries the all-tenants sentinel.
func (i Identity) IsGlobal() bool {
	return i.TenantID == AllTenants
}

func WithTenantID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, tenantIDKey, id)
}

func TenantID(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(tenantIDKey).(snowflake.ID)
	return id, ok
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
