// Package domain contains core types for gateway payments and webhook
// reconciliation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventKind is the normalized class of a gateway webhook event.
type EventKind string

const (
	EventChargeSucceeded      EventKind = "charge_succeeded"
	EventSubscriptionCreated  EventKind = "subscription_created"
	EventSubscriptionDisabled EventKind = "subscription_disabled"
	EventInvoiceFailed        EventKind = "invoice_failed"
	// EventUnknown covers kinds the register does not act on. They are
	// acknowledged so the gateway stops retrying.
	EventUnknown EventKind = "unknown"
)

// GatewayEvent is a verified, parsed webhook payload.
type GatewayEvent struct {
	Provider  string
	Kind      EventKind
	RawKind   string
	Reference string
	// SubscriptionCode is the gateway's subscription identifier, present on
	// subscription lifecycle events.
	SubscriptionCode string
	// TenantID is carried in the gateway metadata when the charge was
	// initialized with one. Zero when absent.
	TenantID snowflake.ID
	Amount   float64
	Currency string
	PaidAt   time.Time
}

// DedupKey distinguishes lifecycle events that share one gateway reference.
func (e GatewayEvent) DedupKey() string {
	return e.RawKind + ":" + e.Reference
}

// EventStatus tracks an event record through processing.
type EventStatus string

const (
	EventStatusReceived  EventStatus = "received"
	EventStatusProcessed EventStatus = "processed"
)

// EventRecord is the idempotency ledger for inbound webhooks. The unique
// (provider, reference) pair makes a replayed delivery a no-op.
type EventRecord struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	Provider    string         `gorm:"type:text;not null;uniqueIndex:idx_payment_events_provider_ref,priority:1" json:"provider"`
	Reference   string         `gorm:"type:text;not null;uniqueIndex:idx_payment_events_provider_ref,priority:2" json:"reference"`
	Kind        EventKind      `gorm:"type:text;not null" json:"kind"`
	Status      EventStatus    `gorm:"type:text;not null;default:'received'" json:"status"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (EventRecord) TableName() string { return "payment_events" }

// PaymentStatus is the settlement state of a ledger entry.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is one settled (or failed) gateway charge tied to a subscription.
type Payment struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	SubscriptionID snowflake.ID  `gorm:"not null;index" json:"subscription_id"`
	Provider       string        `gorm:"type:text;not null" json:"provider"`
	Reference      string        `gorm:"type:text;not null" json:"reference"`
	Amount         float64       `gorm:"not null" json:"amount"`
	Currency       string        `gorm:"type:text;not null" json:"currency"`
	Status         PaymentStatus `gorm:"type:text;not null" json:"status"`
	PaidAt         time.Time     `json:"paid_at"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
