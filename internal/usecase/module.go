package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	"github.com/polkiloo/beautymart/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		func(r *gateway.Registry) GatewayResolver { return r },
		func(s *gateway.Stripe) WebhookParser { return s },
		func(cfg *config.Config) AdminCredentials {
			return AdminCredentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
		},
		func(cfg *config.Config) CheckoutOptions {
			return CheckoutOptions{DeliveryFee: cfg.DeliveryCharge, ClientURL: cfg.ClientURL}
		},
	),
	fx.Provide(
		NewAuthUseCase,
		NewCartUseCase,
		NewCheckoutUseCase,
		NewReconcileUseCase,
		NewOrderUseCase,
	),
)
