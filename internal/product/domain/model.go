// Package domain contains core types for the product catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProductStatus represents lifecycle states for a catalog entry.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is a sellable catalog entry scoped to one tenant. Stock is tracked
// on the row itself; decrements happen through conditional updates so two
// concurrent sales can never drive the quantity negative.
type Product struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID      `gorm:"not null;index;uniqueIndex:idx_products_tenant_sku,priority:1" json:"tenant_id"`
	SKU           string            `gorm:"type:text;not null;uniqueIndex:idx_products_tenant_sku,priority:2" json:"sku"`
	Name          string            `gorm:"type:text;not null" json:"name"`
	Description   string            `gorm:"type:text" json:"description,omitempty"`
	Price         float64           `gorm:"not null" json:"price"`
	Cost          float64           `gorm:"not null;default:0" json:"cost"`
	StockQuantity int               `gorm:"not null;default:0" json:"stock_quantity"`
	MinStockLevel int               `gorm:"not null;default:0" json:"min_stock_level"`
	Status        ProductStatus     `gorm:"type:text;not null;default:'active'" json:"status"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// Active reports whether the product may appear on new sales.
func (p Product) Active() bool { return p.Status == ProductStatusActive }

// LowStock reports whether the on-hand quantity fell to the reorder level.
func (p Product) LowStock() bool { return p.StockQuantity <= p.MinStockLevel }
