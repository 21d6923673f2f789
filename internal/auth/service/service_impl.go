package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/tillworks/tillpos/internal/auth/domain"
	"github.com/tillworks/tillpos/internal/auth/token"
	"github.com/tillworks/tillpos/internal/authz"
	tenantdomain "github.com/tillworks/tillpos/internal/tenant/domain"
	"github.com/tillworks/tillpos/pkg/db"
	"github.com/tillworks/tillpos/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Issuer     *token.Issuer
	Repo       domain.Repository
	TenantRepo tenantdomain.Repository
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	issuer     *token.Issuer
	repo       domain.Repository
	tenantRepo tenantdomain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		issuer:     p.Issuer,
		repo:       p.Repo,
		tenantRepo: p.TenantRepo,
	}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.SignupResult, error) {
	name := strings.TrimSpace(req.BusinessName)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" {
		return nil, domain.ErrInvalidRequest
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Status:    tenantdomain.TenantStatusActive,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := domain.User{
		ID:           s.genID.Generate(),
		TenantID:     tenant.ID,
		ExternalID:   uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		Role:         authz.RoleAdmin,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tenantRepo.Insert(ctx, tx, &tenant); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return tenantdomain.ErrSlugTaken
			}
			return err
		}
		if err := s.repo.Insert(ctx, tx, &user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrUserExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant signed up",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)
	return &domain.SignupResult{TenantID: tenant.ID, UserID: user.ID}, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// No tenant slug means a super admin login against the global tenant.
	tenantID := tenantctx.AllTenants
	if slugValue := strings.TrimSpace(req.TenantSlug); slugValue != "" {
		tenant, err := s.tenantRepo.FindBySlug(ctx, s.db, slugValue)
		if err != nil {
			return nil, err
		}
		if tenant == nil || !tenant.Active() {
			return nil, domain.ErrInvalidCredentials
		}
		tenantID = tenant.ID
	}

	user, err := s.repo.FindByEmail(ctx, s.db, tenantID, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active() {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := s.issuer.Issue(user.ID, user.TenantID, string(user.Role))
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastActive(ctx, s.db, user.ID, time.Now().UTC()); err != nil {
		s.log.Warn("touch last active failed", zap.Error(err))
	}

	return &domain.LoginResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		TenantID:  user.TenantID,
		Role:      user.Role,
	}, nil
}

func (s *service) Resolve(ctx context.Context, rawToken string) (*tenantctx.Identity, error) {
	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, s.db, snowflake.ID(claims.UserID))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active() {
		return nil, domain.ErrInvalidToken
	}

	// The role is re-read from the account so a demotion takes effect on the
	// next request, not at token expiry.
	return &tenantctx.Identity{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     string(user.Role),
	}, nil
}

func (s *service) CreateUser(ctx context.Context, tenantID snowflake.ID, actor tenantctx.Identity, req domain.CreateUserRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !req.Role.Valid() {
		return nil, domain.ErrInvalidRequest
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if !authz.CanManage(authz.Role(actor.Role), req.Role) {
		return nil, domain.ErrRoleNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		ExternalID:   uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

func (s *service) ChangeRole(ctx context.Context, tenantID snowflake.ID, actor tenantctx.Identity, userID snowflake.ID, newRole authz.Role) (*domain.User, error) {
	if !newRole.Valid() {
		return nil, domain.ErrInvalidRequest
	}

	target, err := s.loadScoped(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if !authz.CanChangeRole(authz.Role(actor.Role), target.Role, newRole) {
		return nil, domain.ErrRoleNotAllowed
	}

	if err := s.repo.UpdateFields(ctx, s.db, target.ID, map[string]any{"role": newRole}); err != nil {
		return nil, err
	}
	target.Role = newRole
	return target, nil
}

func (s *service) Deactivate(ctx context.Context, tenantID snowflake.ID, actor tenantctx.Identity, userID snowflake.ID) error {
	target, err := s.loadScoped(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if !authz.CanManage(authz.Role(actor.Role), target.Role) {
		return domain.ErrRoleNotAllowed
	}
	return s.repo.UpdateFields(ctx, s.db, target.ID, map[string]any{"status": domain.UserStatusInactive})
}

func (s *service) ListUsers(ctx context.Context, tenantID snowflake.ID) ([]domain.User, error) {
	return s.repo.ListByTenant(ctx, s.db, tenantID)
}

// loadScoped returns the user only when it belongs to tenantID. A user from
// another tenant is indistinguishable from a missing one.
func (s *service) loadScoped(ctx context.Context, tenantID, userID snowflake.ID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TenantID != tenantID {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.ErrInvalidRequest
	}
	return nil
}
