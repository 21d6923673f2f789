package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]Tenant, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status TenantStatus) error
}
