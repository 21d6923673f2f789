package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/tillworks/tillpos/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GatewayProvider names the payment gateway subscriptions settle through.
const GatewayProvider = "paystack"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *service) Current(ctx context.Context, tenantID snowflake.ID) (*domain.Subscription, error) {
	sub, err := s.repo.FindCurrent(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		// Tenants start on the free plan without a stored row.
		return &domain.Subscription{
			TenantID: tenantID,
			Plan:     domain.PlanFree,
			Status:   domain.StatusActive,
		}, nil
	}
	return sub, nil
}

func (s *service) RequestUpgrade(ctx context.Context, tenantID snowflake.ID, plan domain.Plan) (*domain.Subscription, error) {
	if !plan.Valid() || plan == domain.PlanFree {
		return nil, domain.ErrInvalidPlan
	}

	current, err := s.repo.FindCurrent(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.Status == domain.StatusPending {
			return nil, domain.ErrUpgradePending
		}
		if current.Plan == plan && current.Status == domain.StatusActive {
			return nil, domain.ErrAlreadyOnPlan
		}
	}

	now := time.Now().UTC()
	sub := domain.Subscription{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		Plan:            plan,
		Status:          domain.StatusPending,
		GatewayProvider: GatewayProvider,
		GatewayRef:      uuid.NewString(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &sub); err != nil {
		return nil, err
	}

	s.log.Info("upgrade requested",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan", string(plan)),
		zap.String("gateway_ref", sub.GatewayRef),
	)
	return &sub, nil
}

func (s *service) Cancel(ctx context.Context, tenantID snowflake.ID) (*domain.Subscription, error) {
	current, err := s.repo.FindCurrent(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if current.Status == domain.StatusCancelled {
		return nil, domain.ErrNotCancellable
	}

	if err := s.repo.UpdateFields(ctx, s.db, current.ID, map[string]any{
		"status": domain.StatusCancelled,
	}); err != nil {
		return nil, err
	}
	current.Status = domain.StatusCancelled

	s.log.Info("subscription cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan", string(current.Plan)),
	)
	return current, nil
}
