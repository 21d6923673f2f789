package product

import (
	"github.com/tillworks/tillpos/internal/product/repository"
	"github.com/tillworks/tillpos/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
