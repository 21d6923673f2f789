package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertEvent records the event for idempotency. A duplicate delivery
	// surfaces as a duplicate-key error from the driver.
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) error
	FindEvent(ctx context.Context, db *gorm.DB, provider, reference string) (*EventRecord, error)
	// MarkEventProcessed flips the record from received to processed and
	// reports whether this caller won the flip. When two deliveries of one
	// event run at the same time only one may apply its effects.
	MarkEventProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) (bool, error)

	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListPayments(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Payment, error)
}
