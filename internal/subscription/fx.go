package subscription

import (
	"github.com/tillworks/tillpos/internal/subscription/repository"
	"github.com/tillworks/tillpos/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
