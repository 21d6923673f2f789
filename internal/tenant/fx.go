package tenant

import (
	"github.com/tillworks/tillpos/internal/tenant/repository"
	"github.com/tillworks/tillpos/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
