package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		First(&product, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.Product, error) {
	query := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LowStock {
		query = query.Where("stock_quantity <= min_stock_level")
	}

	var products []domain.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, fields map[string]any) (int64, error) {
	fields["updated_at"] = time.Now().UTC()
	result := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, qty int) (bool, error) {
	result := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("tenant_id = ? AND id = ? AND status = ? AND stock_quantity >= ?",
			tenantID, id, domain.ProductStatusActive, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) RestoreStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, qty int) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", qty),
			"updated_at":     time.Now().UTC(),
		}).Error
}
