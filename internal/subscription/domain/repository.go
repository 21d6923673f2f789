package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	// FindCurrent returns the tenant's newest subscription row, nil when the
	// tenant never subscribed.
	FindCurrent(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (*Subscription, error)
	// FindByGatewayRef matches a webhook event back to its subscription.
	FindByGatewayRef(ctx context.Context, db *gorm.DB, provider, ref string) (*Subscription, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
