package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillworks/tillpos/internal/tenant/domain"
	"github.com/tillworks/tillpos/internal/tenant/repository"
	"github.com/tillworks/tillpos/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Tenant{}))

	svc := NewService(Params{DB: conn, Log: zap.NewNop(), Repo: repository.Provide()})
	return svc, conn
}

func seedTenant(t *testing.T, conn *gorm.DB, id snowflake.ID, status domain.TenantStatus) {
	t.Helper()
	require.NoError(t, conn.Create(&domain.Tenant{
		ID:     id,
		Name:   "Corner Deli",
		Slug:   "corner-deli",
		Status: status,
	}).Error)
}

func TestVerifyActive(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	seedTenant(t, conn, 1, domain.TenantStatusActive)

	tenant, err := svc.VerifyActive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "corner-deli", tenant.Slug)

	_, err = svc.VerifyActive(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyActiveInactiveTenant(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	seedTenant(t, conn, 2, domain.TenantStatusInactive)

	_, err := svc.VerifyActive(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrTenantInactive)
}

func TestDeactivate(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	seedTenant(t, conn, 3, domain.TenantStatusActive)

	require.NoError(t, svc.Deactivate(ctx, 3))
	_, err := svc.VerifyActive(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrTenantInactive)

	assert.ErrorIs(t, svc.Deactivate(ctx, 99), domain.ErrNotFound)
}

func TestList(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	tenants, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenants)

	seedTenant(t, conn, 4, domain.TenantStatusActive)

	tenants, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tenants, 1)
}
