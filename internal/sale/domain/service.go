package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// CreateSale validates the cart, reserves stock and commits the sale in
	// one transaction. Any failed line rolls back the whole sale.
	CreateSale(ctx context.Context, tenantID, cashierID snowflake.ID, req CreateSaleRequest) (*Sale, error)
	// RefundSale reverses a completed sale: flips the payment status and
	// restores each line's stock atomically, recording who reversed it and
	// why.
	RefundSale(ctx context.Context, tenantID, id, actorID snowflake.ID, reason string) (*Sale, error)
	Get(ctx context.Context, tenantID, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListFilter) ([]Sale, error)
}

type CreateSaleRequest struct {
	Items          []CreateSaleItem `json:"items"`
	DiscountAmount float64          `json:"discount_amount"`
	PaymentMethod  string           `json:"payment_method"`
	// TaxRate overrides the register default when non-nil.
	TaxRate    *float64      `json:"tax_rate,omitempty"`
	CustomerID *snowflake.ID `json:"customer_id,omitempty"`
	Notes      string        `json:"notes,omitempty"`
}

type CreateSaleItem struct {
	ProductID snowflake.ID `json:"product_id"`
	Quantity  int          `json:"quantity"`
	// UnitPrice overrides the catalog price when non-nil, for register-side
	// price adjustments. Negative values are rejected.
	UnitPrice *float64 `json:"unit_price,omitempty"`
}
