package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:   p.DB,
		log:  p.Log.Named("tenant.service"),
		repo: p.Repo,
	}
}

func (s *service) VerifyActive(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	if !tenant.Active() {
		return nil, domain.ErrTenantInactive
	}
	return tenant, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

func (s *service) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.repo.List(ctx, s.db)
}

func (s *service) Deactivate(ctx context.Context, id snowflake.ID) error {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return domain.ErrNotFound
	}
	return s.repo.UpdateStatus(ctx, s.db, id, domain.TenantStatusInactive)
}
