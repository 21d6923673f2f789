// Package domain contains core types for user accounts and identity
// resolution.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/authz"
	"gorm.io/datatypes"
)

// UserStatus represents lifecycle states for a user account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents a system user account. TenantID is 0 for super admins,
// the reserved all-tenants sentinel.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID      `gorm:"not null;index;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	ExternalID   string            `gorm:"type:text;not null;uniqueIndex" json:"external_id"`
	Email        string            `gorm:"type:text;not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	DisplayName  string            `gorm:"type:text" json:"display_name"`
	PasswordHash string            `gorm:"type:text;not null" json:"-"`
	Role         authz.Role        `gorm:"type:text;not null" json:"role"`
	Status       UserStatus        `gorm:"type:text;not null;default:'active'" json:"status"`
	LastActiveAt *time.Time        `gorm:"" json:"last_active_at,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Active reports whether the account may authenticate.
func (u User) Active() bool { return u.Status == UserStatusActive }
