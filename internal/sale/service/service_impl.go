package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/config"
	"github.com/tillworks/tillpos/internal/observability/metrics"
	productdomain "github.com/tillworks/tillpos/internal/product/domain"
	"github.com/tillworks/tillpos/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	POSConfig   *config.POSConfigHolder
	Metrics     *metrics.Metrics `optional:"true"`
}

type service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	productRepo productdomain.Repository
	posConfig   *config.POSConfigHolder
	metrics     *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:          p.DB,
		log:         p.Log.Named("sale.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		posConfig:   p.POSConfig,
		metrics:     p.Metrics,
	}
}

func (s *service) CreateSale(ctx context.Context, tenantID, cashierID snowflake.ID, req domain.CreateSaleRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		s.metrics.RecordSaleRejected("empty_cart")
		return nil, domain.ErrEmptySale
	}
	if req.DiscountAmount < 0 {
		s.metrics.RecordSaleRejected("invalid_discount")
		return nil, domain.ErrInvalidRequest
	}
	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			s.metrics.RecordSaleRejected("invalid_line")
			return nil, domain.ErrInvalidRequest
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			s.metrics.RecordSaleRejected("invalid_line")
			return nil, domain.ErrInvalidRequest
		}
	}

	register := s.posConfig.Get()
	taxRate := register.DefaultTaxRate
	if req.TaxRate != nil {
		if *req.TaxRate < 0 || *req.TaxRate >= 1 {
			s.metrics.RecordSaleRejected("invalid_tax_rate")
			return nil, domain.ErrInvalidRequest
		}
		taxRate = *req.TaxRate
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = "cash"
	}
	// The discount is rounded once here; the cap check, the stored field and
	// the total all use the same value so the totals invariant holds for
	// sub-cent inputs.
	discount := roundCents(req.DiscountAmount)

	now := time.Now().UTC()
	sale := domain.Sale{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		CashierID:     cashierID,
		TaxRate:       taxRate,
		Currency:      register.Currency,
		PaymentMethod: method,
		PaymentStatus: domain.PaymentStatusCompleted,
		CustomerID:    req.CustomerID,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		items := make([]domain.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := s.productRepo.FindByID(ctx, tx, tenantID, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.Active() {
				return domain.ErrProductNotFound
			}

			ok, err := s.productRepo.DecrementStock(ctx, tx, tenantID, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInsufficientStock
			}

			unitPrice := product.Price
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			lineTotal := roundCents(unitPrice * float64(line.Quantity))
			subtotal += lineTotal
			items = append(items, domain.SaleItem{
				ID:          s.genID.Generate(),
				SaleID:      sale.ID,
				TenantID:    tenantID,
				ProductID:   product.ID,
				ProductName: product.Name,
				SKU:         product.SKU,
				UnitPrice:   unitPrice,
				Quantity:    line.Quantity,
				LineTotal:   lineTotal,
				CreatedAt:   now,
			})
		}

		subtotal = roundCents(subtotal)
		tax := roundCents(subtotal * taxRate)
		if discount > subtotal+tax {
			return domain.ErrDiscountTooLarge
		}

		sale.Subtotal = subtotal
		sale.TaxAmount = tax
		sale.DiscountAmount = discount
		sale.Total = roundCents(subtotal + tax - discount)
		sale.Items = items
		return s.repo.Insert(ctx, tx, &sale)
	})
	if err != nil {
		switch err {
		case domain.ErrProductNotFound:
			s.metrics.RecordSaleRejected("product_missing")
		case domain.ErrInsufficientStock:
			s.metrics.RecordSaleRejected("stock")
		case domain.ErrDiscountTooLarge:
			s.metrics.RecordSaleRejected("discount")
		}
		return nil, err
	}

	s.metrics.RecordSaleCommitted()
	s.log.Info("sale committed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.Float64("total", sale.Total),
		zap.Int("lines", len(sale.Items)),
	)
	return &sale, nil
}

func (s *service) RefundSale(ctx context.Context, tenantID, id, actorID snowflake.ID, reason string) (*domain.Sale, error) {
	var refunded *domain.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.repo.FindByID(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}

		now := time.Now().UTC()
		ok, err := s.repo.MarkRefunded(ctx, tx, tenantID, id, actorID, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyRefunded
		}

		for _, item := range sale.Items {
			if err := s.productRepo.RestoreStock(ctx, tx, tenantID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		sale.PaymentStatus = domain.PaymentStatusRefunded
		sale.RefundedAt = &now
		sale.RefundedBy = actorID
		sale.RefundReason = reason
		refunded = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSaleRefunded()
	s.log.Info("sale refunded",
		zap.String("sale_id", id.String()),
		zap.String("tenant_id", tenantID.String()),
	)
	return refunded, nil
}

func (s *service) Get(ctx context.Context, tenantID, id snowflake.ID) (*domain.Sale, error) {
	sale, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

func (s *service) List(ctx context.Context, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.Sale, error) {
	return s.repo.List(ctx, s.db, tenantID, filter)
}

// roundCents keeps monetary arithmetic on whole cents.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
