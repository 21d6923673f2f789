package sale

import (
	"github.com/tillworks/tillpos/internal/sale/repository"
	"github.com/tillworks/tillpos/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
