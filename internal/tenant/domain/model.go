// Package domain contains core types for tenants.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TenantStatus represents lifecycle states for a tenant.
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// Tenant is an independently billed business account, the unit of data
// isolation. Tenants are never hard-deleted; deactivation is a status flip.
type Tenant struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Slug      string            `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Status    TenantStatus      `gorm:"type:text;not null;default:'active'" json:"status"`
	Currency  string            `gorm:"type:text;not null;default:'USD'" json:"currency"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// Active reports whether the tenant may serve requests.
func (t Tenant) Active() bool { return t.Status == TenantStatusActive }
