package payment

import (
	"github.com/tillworks/tillpos/internal/config"
	paymentdomain "github.com/tillworks/tillpos/internal/payment/domain"
	"github.com/tillworks/tillpos/internal/payment/gateway/paystack"
	"github.com/tillworks/tillpos/internal/payment/repository"
	"github.com/tillworks/tillpos/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(provideGateway),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

func provideGateway(cfg config.Config) (paymentdomain.Gateway, error) {
	return paystack.New(cfg.GatewayWebhookSecret)
}
