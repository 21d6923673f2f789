package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists products. Every lookup is tenant-scoped; callers pass
// the handle so stock movements can run inside a sale transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]Product, error)
	UpdateFields(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, fields map[string]any) (int64, error)

	// DecrementStock atomically subtracts qty when at least qty units are on
	// hand. It reports false when the guard did not match.
	DecrementStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, qty int) (bool, error)
	// RestoreStock adds qty back, used when a sale is refunded.
	RestoreStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, qty int) error
}

// ListFilter narrows a catalog listing.
type ListFilter struct {
	Status   ProductStatus
	LowStock bool
}
