package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/observability/metrics"
	"github.com/tillworks/tillpos/internal/payment/domain"
	subdomain "github.com/tillworks/tillpos/internal/subscription/domain"
	"github.com/tillworks/tillpos/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	SubRepo subdomain.Repository
	Gateway domain.Gateway
	Metrics *metrics.Metrics `optional:"true"`
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	subRepo subdomain.Repository
	gateway domain.Gateway
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("payment.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		subRepo: p.SubRepo,
		gateway: p.Gateway,
		metrics: p.Metrics,
	}
}

func (s *service) ProcessEvent(ctx context.Context, signature string, body []byte) (domain.Outcome, error) {
	if err := s.gateway.VerifySignature(signature, body); err != nil {
		s.metrics.RecordWebhookEvent("unknown", "invalid_signature")
		return "", err
	}

	event, err := s.gateway.Parse(body)
	if err != nil {
		s.metrics.RecordWebhookEvent("unknown", "malformed")
		return "", err
	}
	if event.Kind == domain.EventUnknown {
		return s.recordIgnored(ctx, event, body)
	}

	record := &domain.EventRecord{
		ID:        s.genID.Generate(),
		Provider:  event.Provider,
		Reference: event.DedupKey(),
		Kind:      event.Kind,
		Status:    domain.EventStatusReceived,
		Payload:   datatypes.JSON(body),
		CreatedAt: time.Now().UTC(),
	}

	// The record is written outside the apply transaction so a duplicate
	// delivery never poisons it. A crash after this insert leaves the record
	// in the received state and the retry resumes it below.
	if err := s.repo.InsertEvent(ctx, s.db, record); err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return "", err
		}
		existing, ferr := s.repo.FindEvent(ctx, s.db, event.Provider, event.DedupKey())
		if ferr != nil {
			return "", ferr
		}
		if existing == nil || existing.Status == domain.EventStatusProcessed {
			s.metrics.RecordWebhookEvent(string(event.Kind), string(domain.OutcomeDuplicate))
			return domain.OutcomeDuplicate, nil
		}
		record = existing
	}

	outcome := domain.OutcomeApplied
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The flip is claimed before any effect. Two deliveries resuming the
		// same received record race here and the loser applies nothing; a
		// rollback below releases the claim for the next retry.
		claimed, err := s.repo.MarkEventProcessed(ctx, tx, record.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		if !claimed {
			outcome = domain.OutcomeDuplicate
			return nil
		}

		sub, err := s.subRepo.FindByGatewayRef(ctx, tx, event.Provider, event.Reference)
		if err != nil {
			return err
		}
		if sub == nil {
			// A charge that names a tenant but no subscription is still a
			// real payment and goes on the ledger.
			if event.Kind == domain.EventChargeSucceeded && event.TenantID != 0 {
				return s.recordPayment(ctx, tx, event, event.TenantID, 0, domain.PaymentStatusSucceeded)
			}
			outcome = domain.OutcomeUnmatched
			return nil
		}
		return s.apply(ctx, tx, event, sub)
	})
	if err != nil {
		return "", err
	}

	s.metrics.RecordWebhookEvent(string(event.Kind), string(outcome))
	s.log.Info("webhook event processed",
		zap.String("event", event.RawKind),
		zap.String("reference", event.Reference),
		zap.String("outcome", string(outcome)),
	)
	return outcome, nil
}

// recordIgnored durably records an authenticated event of a kind the register
// does not act on, so a replay of it reads as a duplicate.
func (s *service) recordIgnored(ctx context.Context, event *domain.GatewayEvent, body []byte) (domain.Outcome, error) {
	now := time.Now().UTC()
	record := &domain.EventRecord{
		ID:          s.genID.Generate(),
		Provider:    event.Provider,
		Reference:   event.DedupKey(),
		Kind:        domain.EventUnknown,
		Status:      domain.EventStatusProcessed,
		Payload:     datatypes.JSON(body),
		ProcessedAt: &now,
		CreatedAt:   now,
	}
	if err := s.repo.InsertEvent(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.metrics.RecordWebhookEvent(event.RawKind, string(domain.OutcomeDuplicate))
			return domain.OutcomeDuplicate, nil
		}
		return "", err
	}
	s.metrics.RecordWebhookEvent(event.RawKind, string(domain.OutcomeIgnored))
	s.log.Debug("webhook event ignored", zap.String("event", event.RawKind))
	return domain.OutcomeIgnored, nil
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, event *domain.GatewayEvent, sub *subdomain.Subscription) error {
	switch event.Kind {
	case domain.EventChargeSucceeded:
		if err := s.subRepo.UpdateFields(ctx, tx, sub.ID, map[string]any{
			"status":             subdomain.StatusActive,
			"current_period_end": event.PaidAt.AddDate(0, 1, 0),
		}); err != nil {
			return err
		}
		return s.recordPayment(ctx, tx, event, sub.TenantID, sub.ID, domain.PaymentStatusSucceeded)

	case domain.EventSubscriptionCreated:
		fields := map[string]any{"status": subdomain.StatusActive}
		if event.SubscriptionCode != "" {
			fields["gateway_sub_code"] = event.SubscriptionCode
		}
		return s.subRepo.UpdateFields(ctx, tx, sub.ID, fields)

	case domain.EventInvoiceFailed:
		if err := s.subRepo.UpdateFields(ctx, tx, sub.ID, map[string]any{
			"status": subdomain.StatusPastDue,
		}); err != nil {
			return err
		}
		return s.recordPayment(ctx, tx, event, sub.TenantID, sub.ID, domain.PaymentStatusFailed)

	case domain.EventSubscriptionDisabled:
		return s.subRepo.UpdateFields(ctx, tx, sub.ID, map[string]any{
			"status": subdomain.StatusCancelled,
		})
	}
	return nil
}

func (s *service) recordPayment(ctx context.Context, tx *gorm.DB, event *domain.GatewayEvent, tenantID, subID snowflake.ID, status domain.PaymentStatus) error {
	return s.repo.InsertPayment(ctx, tx, &domain.Payment{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		SubscriptionID: subID,
		Provider:       event.Provider,
		Reference:      event.Reference,
		Amount:         event.Amount,
		Currency:       event.Currency,
		Status:         status,
		PaidAt:         event.PaidAt,
		CreatedAt:      time.Now().UTC(),
	})
}

func (s *service) ListPayments(ctx context.Context, tenantID snowflake.ID) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx, s.db, tenantID)
}
