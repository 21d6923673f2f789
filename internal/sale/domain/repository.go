package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	// FindByID loads the sale with its items, scoped to the tenant.
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]Sale, error)
	// MarkRefunded flips payment_status from completed to refunded. It
	// reports false when the sale was not in the completed state, which is
	// how a second refund attempt surfaces.
	MarkRefunded(ctx context.Context, db *gorm.DB, tenantID, id, actorID snowflake.ID, reason string, at time.Time) (bool, error)
}

// ListFilter narrows a sales listing.
type ListFilter struct {
	Status PaymentStatus
	Since  time.Time
	Until  time.Time
	Limit  int
}
