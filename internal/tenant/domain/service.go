package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// VerifyActive loads the tenant and fails unless its status is active.
	// The tenant guard calls this for every scoped request.
	VerifyActive(ctx context.Context, id snowflake.ID) (*Tenant, error)
	Get(ctx context.Context, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	Deactivate(ctx context.Context, id snowflake.ID) error
}
