package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillworks/tillpos/internal/product/domain"
	"github.com/tillworks/tillpos/internal/product/repository"
	"github.com/tillworks/tillpos/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, domain.Repository, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := repository.Provide()
	svc := NewService(Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: repo})
	return svc, repo, conn
}

func TestCreateProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tenantID := snowflake.ID(100)

	product, err := svc.Create(ctx, tenantID, domain.CreateProductRequest{
		Name:          "Flat White",
		Price:         4.50,
		Cost:          1.20,
		StockQuantity: 10,
		MinStockLevel: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "flat-white", product.SKU)
	assert.True(t, product.Active())
	assert.False(t, product.LowStock())

	t.Run("duplicate sku in tenant", func(t *testing.T) {
		_, err := svc.Create(ctx, tenantID, domain.CreateProductRequest{
			SKU:   "flat-white",
			Name:  "Flat White v2",
			Price: 5,
		})
		assert.ErrorIs(t, err, domain.ErrSKUTaken)
	})

	t.Run("same sku in another tenant", func(t *testing.T) {
		_, err := svc.Create(ctx, snowflake.ID(200), domain.CreateProductRequest{
			SKU:   "flat-white",
			Name:  "Flat White",
			Price: 4,
		})
		assert.NoError(t, err)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := svc.Create(ctx, tenantID, domain.CreateProductRequest{
			Name:  "Bad",
			Price: -1,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestUpdateProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tenantID := snowflake.ID(100)

	product, err := svc.Create(ctx, tenantID, domain.CreateProductRequest{
		Name: "Muffin", Price: 3, StockQuantity: 5,
	})
	require.NoError(t, err)

	price := 3.50
	updated, err := svc.Update(ctx, tenantID, product.ID, domain.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 3.50, updated.Price)
	assert.Equal(t, "Muffin", updated.Name)

	t.Run("cross-tenant update misses", func(t *testing.T) {
		_, err := svc.Update(ctx, snowflake.ID(200), product.ID, domain.UpdateProductRequest{Price: &price})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, tenantID, product.ID, domain.UpdateProductRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestArchiveProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tenantID := snowflake.ID(100)

	product, err := svc.Create(ctx, tenantID, domain.CreateProductRequest{
		Name: "Seasonal Blend", Price: 12, StockQuantity: 3,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, tenantID, product.ID))

	got, err := svc.Get(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusArchived, got.Status)

	active, err := svc.List(ctx, tenantID, domain.ListFilter{Status: domain.ProductStatusActive})
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, svc.Archive(ctx, tenantID, snowflake.ID(999)), domain.ErrNotFound)
}

func TestStockMovements(t *testing.T) {
	svc, repo, conn := newTestService(t)
	ctx := context.Background()
	tenantID := snowflake.ID(100)

	product, err := svc.Create(ctx, tenantID, domain.CreateProductRequest{
		Name: "Espresso", Price: 2.50, StockQuantity: 3, MinStockLevel: 1,
	})
	require.NoError(t, err)

	ok, err := repo.DecrementStock(ctx, conn, tenantID, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("guard blocks overdraw", func(t *testing.T) {
		ok, err := repo.DecrementStock(ctx, conn, tenantID, product.ID, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := svc.Get(ctx, tenantID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.StockQuantity)
		assert.True(t, got.LowStock())
	})

	t.Run("archived products do not sell", func(t *testing.T) {
		require.NoError(t, svc.Archive(ctx, tenantID, product.ID))
		ok, err := repo.DecrementStock(ctx, conn, tenantID, product.ID, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("restore adds back", func(t *testing.T) {
		require.NoError(t, repo.RestoreStock(ctx, conn, tenantID, product.ID, 2))
		got, err := svc.Get(ctx, tenantID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.StockQuantity)
	})
}
