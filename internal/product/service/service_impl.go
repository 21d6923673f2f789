package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/tillworks/tillpos/internal/product/domain"
	"github.com/tillworks/tillpos/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *service) Create(ctx context.Context, tenantID snowflake.ID, req domain.CreateProductRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price < 0 || req.Cost < 0 || req.StockQuantity < 0 || req.MinStockLevel < 0 {
		return nil, domain.ErrInvalidRequest
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = slug.Make(name)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		SKU:           sku,
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		Cost:          req.Cost,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		Status:        domain.ProductStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSKUTaken
		}
		return nil, err
	}
	return &product, nil
}

func (s *service) Get(ctx context.Context, tenantID, id snowflake.ID) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *service) List(ctx context.Context, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, s.db, tenantID, filter)
}

func (s *service) Update(ctx context.Context, tenantID, id snowflake.ID, req domain.UpdateProductRequest) (*domain.Product, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidRequest
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.ErrInvalidRequest
		}
		fields["price"] = *req.Price
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			return nil, domain.ErrInvalidRequest
		}
		fields["cost"] = *req.Cost
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, domain.ErrInvalidRequest
		}
		fields["stock_quantity"] = *req.StockQuantity
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return nil, domain.ErrInvalidRequest
		}
		fields["min_stock_level"] = *req.MinStockLevel
	}
	if len(fields) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	affected, err := s.repo.UpdateFields(ctx, s.db, tenantID, id, fields)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}
	return s.Get(ctx, tenantID, id)
}

func (s *service) Archive(ctx context.Context, tenantID, id snowflake.ID) error {
	affected, err := s.repo.UpdateFields(ctx, s.db, tenantID, id, map[string]any{
		"status": domain.ProductStatusArchived,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
