package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Current returns the tenant's subscription, or a synthetic free-plan
	// row when the tenant never upgraded.
	Current(ctx context.Context, tenantID snowflake.ID) (*Subscription, error)
	// RequestUpgrade opens a pending subscription and hands back the gateway
	// reference the register uses to initialize the charge. Activation
	// happens later, off the gateway webhook.
	RequestUpgrade(ctx context.Context, tenantID snowflake.ID, plan Plan) (*Subscription, error)
	Cancel(ctx context.Context, tenantID snowflake.ID) (*Subscription, error)
}
