package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/beautymart/internal/config"
)

// Module exposes payment gateway adapters to the fx graph.
var Module = fx.Options(
	fx.Provide(
		newStripe,
		newRazorpay,
		newPayPal,
		newRegistry,
	),
)

type adapterParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newStripe(p adapterParams) (*Stripe, error) {
	return NewStripe(p.Config.Gateways.Stripe, p.Config.Gateways.Timeout, p.Logger)
}

func newRazorpay(p adapterParams) (*Razorpay, error) {
	return NewRazorpay(p.Config.Gateways.Razorpay, p.Config.Gateways.Timeout, p.Logger)
}

func newPayPal(p adapterParams) (*PayPal, error) {
	return NewPayPal(p.Config.Gateways.PayPal, p.Config.Gateways.Timeout, p.Logger)
}

type registryParams struct {
	fx.In

	Stripe   *Stripe
	Razorpay *Razorpay
	PayPal   *PayPal
}

func newRegistry(p registryParams) *Registry {
	return NewRegistry(p.Stripe, p.Razorpay, p.PayPal)
}
