package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/beautymart/internal/adapter/events"
	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	"github.com/polkiloo/beautymart/internal/app"
	"github.com/polkiloo/beautymart/internal/config"
	"github.com/polkiloo/beautymart/internal/logger"
	"github.com/polkiloo/beautymart/internal/pkg/auth"
	"github.com/polkiloo/beautymart/internal/server/http/router"
	"github.com/polkiloo/beautymart/internal/storage/postgres"
	"github.com/polkiloo/beautymart/internal/usecase"
)

// Module assembles the storefront application graph. Extra options are
// appended last so callers can replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		gateway.Module,
		events.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
