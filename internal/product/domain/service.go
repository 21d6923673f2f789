package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, tenantID snowflake.ID, req CreateProductRequest) (*Product, error)
	Get(ctx context.Context, tenantID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListFilter) ([]Product, error)
	Update(ctx context.Context, tenantID, id snowflake.ID, req UpdateProductRequest) (*Product, error)
	// Archive takes a product off the catalog without touching historical
	// sale lines that reference it.
	Archive(ctx context.Context, tenantID, id snowflake.ID) error
}

type CreateProductRequest struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Cost          float64 `json:"cost"`
	StockQuantity int     `json:"stock_quantity"`
	MinStockLevel int     `json:"min_stock_level"`
}

// UpdateProductRequest carries partial updates; nil fields are untouched.
type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
	MinStockLevel *int     `json:"min_stock_level,omitempty"`
}
