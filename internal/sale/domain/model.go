// Package domain contains core types for sales.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PaymentStatus tracks settlement of a sale. A completed sale can move to
// refunded exactly once; there are no other transitions.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Sale is a committed checkout. Monetary fields are rounded to cents at
// write time; line totals are captured so later catalog edits cannot change
// historical receipts.
type Sale struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	CashierID      snowflake.ID      `gorm:"not null" json:"cashier_id"`
	Subtotal       float64           `gorm:"not null" json:"subtotal"`
	TaxRate        float64           `gorm:"not null" json:"tax_rate"`
	TaxAmount      float64           `gorm:"not null" json:"tax_amount"`
	DiscountAmount float64           `gorm:"not null;default:0" json:"discount_amount"`
	Total          float64           `gorm:"not null" json:"total"`
	Currency       string            `gorm:"type:text;not null" json:"currency"`
	PaymentMethod  string            `gorm:"type:text;not null;default:'cash'" json:"payment_method"`
	PaymentStatus  PaymentStatus     `gorm:"type:text;not null;default:'completed'" json:"payment_status"`
	CustomerID     *snowflake.ID     `gorm:"index" json:"customer_id,omitempty"`
	Notes          string            `gorm:"type:text" json:"notes,omitempty"`
	RefundedAt     *time.Time        `json:"refunded_at,omitempty"`
	RefundedBy     snowflake.ID      `json:"refunded_by,omitempty"`
	RefundReason   string            `gorm:"type:text" json:"refund_reason,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

// Refunded reports whether the sale has been reversed.
func (s Sale) Refunded() bool { return s.PaymentStatus == PaymentStatusRefunded }

// SaleItem is one line of a sale, denormalized from the catalog at commit.
type SaleItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SaleID      snowflake.ID `gorm:"not null;index" json:"sale_id"`
	TenantID    snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	ProductID   snowflake.ID `gorm:"not null" json:"product_id"`
	ProductName string       `gorm:"type:text;not null" json:"product_name"`
	SKU         string       `gorm:"type:text;not null" json:"sku"`
	UnitPrice   float64      `gorm:"not null" json:"unit_price"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	LineTotal   float64      `gorm:"not null" json:"line_total"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (SaleItem) TableName() string { return "sale_items" }
