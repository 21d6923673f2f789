package auth

import (
	"github.com/tillworks/tillpos/internal/auth/repository"
	"github.com/tillworks/tillpos/internal/auth/service"
	"github.com/tillworks/tillpos/internal/auth/token"
	"github.com/tillworks/tillpos/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(provideIssuer),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

func provideIssuer(cfg config.Config) (*token.Issuer, error) {
	return token.NewIssuer(cfg.AuthJWTSecret, cfg.AuthTokenTTL)
}
