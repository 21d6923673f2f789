package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/authz"
	"github.com/tillworks/tillpos/pkg/tenantctx"
)

type Service interface {
	// Signup creates a tenant and its first admin user in one unit of work.
	Signup(ctx context.Context, req SignupRequest) (*SignupResult, error)

	// Login verifies credentials within a tenant and issues a bearer token.
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)

	// Resolve turns a raw bearer token into a caller identity. It fails when
	// the signature is invalid, the token is expired, or the referenced user
	// is no longer active. Tenant liveness is checked by the tenant guard.
	Resolve(ctx context.Context, rawToken string) (*tenantctx.Identity, error)

	CreateUser(ctx context.Context, tenantID snowflake.ID, actor tenantctx.Identity, req CreateUserRequest) (*User, error)
	ChangeRole(ctx context.Context, tenantID snowflake.ID, actor tenantctx.Identity, userID snowflake.ID, newRole authz.Role) (*User, error)
	Deactivate(ctx context.Context, tenantID snowflake.ID, actor tenantctx.Identity, userID snowflake.ID) error
	ListUsers(ctx context.Context, tenantID snowflake.ID) ([]User, error)
}

type SignupRequest struct {
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
}

type SignupResult struct {
	TenantID snowflake.ID `json:"tenant_id"`
	UserID   snowflake.ID `json:"user_id"`
}

type LoginRequest struct {
	TenantSlug string `json:"tenant"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	UserID    snowflake.ID `json:"user_id"`
	TenantID  snowflake.ID `json:"tenant_id"`
	Role      authz.Role   `json:"role"`
}

type CreateUserRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DisplayName string     `json:"display_name"`
	Role        authz.Role `json:"role"`
}
