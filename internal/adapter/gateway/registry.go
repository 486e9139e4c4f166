package gateway

import (
	"fmt"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

// Registry resolves the adapter serving a payment method.
type Registry struct {
	gateways map[model.PaymentMethod]Gateway
}

// NewRegistry indexes gateways by their method. Later entries win.
func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[model.PaymentMethod]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Method()] = g
	}
	return r
}

// Readiness maps every registered method to the reason its gateway cannot
// take payments, or nil when it can.
func (r *Registry) Readiness() map[model.PaymentMethod]error {
	out := make(map[model.PaymentMethod]error, len(r.gateways))
	for method, g := range r.gateways {
		out[method] = g.Configured()
	}
	return out
}

// Get returns the gateway for method or ErrUnknownMethod.
func (r *Registry) Get(method model.PaymentMethod) (Gateway, error) {
	g, ok := r.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrUnknownMethod, method)
	}
	return g, nil
}
