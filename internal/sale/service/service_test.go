package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillworks/tillpos/internal/config"
	productdomain "github.com/tillworks/tillpos/internal/product/domain"
	productrepo "github.com/tillworks/tillpos/internal/product/repository"
	"github.com/tillworks/tillpos/internal/sale/domain"
	"github.com/tillworks/tillpos/internal/sale/repository"
	"github.com/tillworks/tillpos/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testTenant = snowflake.ID(100)

type testEnv struct {
	svc      domain.Service
	conn     *gorm.DB
	products productdomain.Repository
	node     *snowflake.Node
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&productdomain.Product{}, &domain.Sale{}, &domain.SaleItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	products := productrepo.Provide()
	holder := config.NewStaticPOSConfigHolder(config.POSConfig{
		DefaultTaxRate: 0.10,
		Currency:       "USD",
		ReceiptFooter:  "Thanks",
	})

	svc := NewService(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.Provide(),
		ProductRepo: products,
		POSConfig:   holder,
	})
	return &testEnv{svc: svc, conn: conn, products: products, node: node}
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, stock int) *productdomain.Product {
	t.Helper()
	product := &productdomain.Product{
		ID:            e.node.Generate(),
		TenantID:      testTenant,
		SKU:           name,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		Status:        productdomain.ProductStatusActive,
	}
	require.NoError(t, e.products.Insert(context.Background(), e.conn, product))
	return product
}

func (e *testEnv) stockOf(t *testing.T, id snowflake.ID) int {
	t.Helper()
	product, err := e.products.FindByID(context.Background(), e.conn, testTenant, id)
	require.NoError(t, err)
	require.NotNil(t, product)
	return product.StockQuantity
}

func TestCreateSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cashier := snowflake.ID(7)

	coffee := env.seedProduct(t, "coffee", 4.50, 10)
	muffin := env.seedProduct(t, "muffin", 3.25, 5)

	sale, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
		Items: []domain.CreateSaleItem{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: muffin.ID, Quantity: 1},
		},
		DiscountAmount: 1.00,
	})
	require.NoError(t, err)

	// 2*4.50 + 3.25 = 12.25; tax 10% = 1.23 (rounded); total 12.48 after discount.
	assert.Equal(t, 12.25, sale.Subtotal)
	assert.Equal(t, 1.23, sale.TaxAmount)
	assert.Equal(t, 12.48, sale.Total)
	assert.Equal(t, domain.PaymentStatusCompleted, sale.PaymentStatus)
	assert.Equal(t, cashier, sale.CashierID)
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, "coffee", sale.Items[0].ProductName)
	assert.Equal(t, 9.00, sale.Items[0].LineTotal)

	assert.Equal(t, 8, env.stockOf(t, coffee.ID))
	assert.Equal(t, 4, env.stockOf(t, muffin.ID))
}

func TestCreateSaleValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cashier := snowflake.ID(7)
	coffee := env.seedProduct(t, "coffee", 4.50, 10)

	t.Run("empty cart", func(t *testing.T) {
		_, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{})
		assert.ErrorIs(t, err, domain.ErrEmptySale)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
			Items: []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 0}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("negative discount", func(t *testing.T) {
		_, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
			Items:          []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 1}},
			DiscountAmount: -5,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("negative price override", func(t *testing.T) {
		bad := -1.0
		_, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
			Items: []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 1, UnitPrice: &bad}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("price override is honored", func(t *testing.T) {
		override := 4.00
		sale, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
			Items: []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 1, UnitPrice: &override}},
		})
		require.NoError(t, err)
		assert.Equal(t, 4.00, sale.Items[0].UnitPrice)
		assert.Equal(t, 4.00, sale.Subtotal)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
			Items: []domain.CreateSaleItem{{ProductID: snowflake.ID(999), Quantity: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("discount larger than total", func(t *testing.T) {
		_, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
			Items:          []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 1}},
			DiscountAmount: 100,
		})
		assert.ErrorIs(t, err, domain.ErrDiscountTooLarge)
		// The rejected sale must not leak its stock reservation.
		assert.Equal(t, 10, env.stockOf(t, coffee.ID))
	})
}

func TestCreateSaleSubCentDiscount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.seedProduct(t, "book", 10.00, 5)

	sale, err := env.svc.CreateSale(ctx, testTenant, snowflake.ID(7), domain.CreateSaleRequest{
		Items:          []domain.CreateSaleItem{{ProductID: book.ID, Quantity: 1}},
		DiscountAmount: 0.005,
	})
	require.NoError(t, err)

	// The stored discount and the total must come from the same rounded
	// value, never one raw and one rounded.
	assert.Equal(t, 10.00, sale.Subtotal)
	assert.Equal(t, 1.00, sale.TaxAmount)
	assert.Equal(t, 0.01, sale.DiscountAmount)
	assert.Equal(t, 10.99, sale.Total)
	assert.InDelta(t, sale.Subtotal+sale.TaxAmount-sale.DiscountAmount, sale.Total, 0.001)
}

func TestConcurrentSalesContendForStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coffee := env.seedProduct(t, "coffee", 4.50, 5)

	// Two registers ring up 3 units each against a stock of 5.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.CreateSale(ctx, testTenant, snowflake.ID(7), domain.CreateSaleRequest{
				Items: []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 3}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var completed, rejected int
	for err := range errs {
		switch {
		case err == nil:
			completed++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 2, env.stockOf(t, coffee.ID))

	var count int64
	require.NoError(t, env.conn.Model(&domain.Sale{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cashier := snowflake.ID(7)

	coffee := env.seedProduct(t, "coffee", 4.50, 10)
	muffin := env.seedProduct(t, "muffin", 3.25, 1)

	_, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
		Items: []domain.CreateSaleItem{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: muffin.ID, Quantity: 3},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// The first line's decrement rolls back with the transaction.
	assert.Equal(t, 10, env.stockOf(t, coffee.ID))
	assert.Equal(t, 1, env.stockOf(t, muffin.ID))

	var count int64
	require.NoError(t, env.conn.Model(&domain.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateSaleCrossTenantProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := &productdomain.Product{
		ID:            env.node.Generate(),
		TenantID:      snowflake.ID(200),
		SKU:           "foreign",
		Name:          "foreign",
		Price:         1,
		StockQuantity: 10,
		Status:        productdomain.ProductStatusActive,
	}
	require.NoError(t, env.products.Insert(ctx, env.conn, other))

	_, err := env.svc.CreateSale(ctx, testTenant, snowflake.ID(7), domain.CreateSaleRequest{
		Items: []domain.CreateSaleItem{{ProductID: other.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRefundSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cashier := snowflake.ID(7)
	coffee := env.seedProduct(t, "coffee", 4.50, 10)

	sale, err := env.svc.CreateSale(ctx, testTenant, cashier, domain.CreateSaleRequest{
		Items: []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, env.stockOf(t, coffee.ID))

	refunded, err := env.svc.RefundSale(ctx, testTenant, sale.ID, cashier, "customer returned items")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, refunded.PaymentStatus)
	assert.NotNil(t, refunded.RefundedAt)
	assert.Equal(t, cashier, refunded.RefundedBy)
	assert.Equal(t, "customer returned items", refunded.RefundReason)
	assert.Equal(t, 10, env.stockOf(t, coffee.ID))

	t.Run("second refund rejected", func(t *testing.T) {
		_, err := env.svc.RefundSale(ctx, testTenant, sale.ID, cashier, "")
		assert.ErrorIs(t, err, domain.ErrAlreadyRefunded)
		// Stock is restored once, not twice.
		assert.Equal(t, 10, env.stockOf(t, coffee.ID))
	})

	t.Run("cross-tenant refund looks missing", func(t *testing.T) {
		_, err := env.svc.RefundSale(ctx, snowflake.ID(200), sale.ID, cashier, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGetAndListSales(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coffee := env.seedProduct(t, "coffee", 4.50, 10)

	first, err := env.svc.CreateSale(ctx, testTenant, snowflake.ID(7), domain.CreateSaleRequest{
		Items: []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = env.svc.CreateSale(ctx, testTenant, snowflake.ID(7), domain.CreateSaleRequest{
		Items: []domain.CreateSaleItem{{ProductID: coffee.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	got, err := env.svc.Get(ctx, testTenant, first.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = env.svc.Get(ctx, snowflake.ID(200), first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sales, err := env.svc.List(ctx, testTenant, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	completed, err := env.svc.List(ctx, testTenant, domain.ListFilter{Status: domain.PaymentStatusCompleted, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}
