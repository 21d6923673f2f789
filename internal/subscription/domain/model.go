// Package domain contains core types for tenant subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status tracks a subscription through the gateway lifecycle. An upgrade
// starts pending and only becomes active once the gateway confirms payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
)

// Plan identifies a pricing tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Valid reports whether the plan is one a tenant can subscribe to.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// Subscription records one tenant's paid tier. GatewayRef carries the
// payment gateway's reference so webhook events can be matched back.
type Subscription struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID         snowflake.ID      `gorm:"not null;index" json:"tenant_id"`
	Plan             Plan              `gorm:"type:text;not null" json:"plan"`
	Status           Status            `gorm:"type:text;not null" json:"status"`
	GatewayProvider  string            `gorm:"type:text" json:"gateway_provider,omitempty"`
	GatewayRef       string            `gorm:"type:text;index" json:"gateway_ref,omitempty"`
	// GatewaySubCode is the gateway's own subscription identifier, bound
	// when the gateway confirms creation. Lifecycle events may carry either
	// reference.
	GatewaySubCode   string            `gorm:"type:text;index" json:"gateway_sub_code,omitempty"`
	CurrentPeriodEnd *time.Time        `json:"current_period_end,omitempty"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
