package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, email string) (*User, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]User, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	TouchLastActive(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
