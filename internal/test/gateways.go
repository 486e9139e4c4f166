package test

import (
	"context"
	"sync"

	"github.com/polkiloo/beautymart/internal/adapter/events"
	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

// GatewayStub is a controllable payment gateway.
type GatewayStub struct {
	MethodVal     model.PaymentMethod
	ConfiguredErr error
	InitiateFn    func(context.Context, *model.Order, gateway.Charge) (*gateway.PaymentHandle, error)
	ConfirmFn     func(context.Context, *model.Order, gateway.Payload) (*gateway.ConfirmationResult, error)

	Charges []gateway.Charge
	mu      sync.Mutex
}

func (g *GatewayStub) Method() model.PaymentMethod { return g.MethodVal }

func (g *GatewayStub) Configured() error { return g.ConfiguredErr }

// Initiate records the charge and returns a handle referencing "ref-<method>".
func (g *GatewayStub) Initiate(ctx context.Context, order *model.Order, charge gateway.Charge) (*gateway.PaymentHandle, error) {
	g.mu.Lock()
	g.Charges = append(g.Charges, charge)
	g.mu.Unlock()
	if g.InitiateFn != nil {
		return g.InitiateFn(ctx, order, charge)
	}
	return &gateway.PaymentHandle{
		RedirectURL: "https://pay.example/" + order.ID.String(),
		ProviderRef: "ref-" + string(g.MethodVal),
	}, nil
}

// Confirm verifies by default.
func (g *GatewayStub) Confirm(ctx context.Context, order *model.Order, payload gateway.Payload) (*gateway.ConfirmationResult, error) {
	if g.ConfirmFn != nil {
		return g.ConfirmFn(ctx, order, payload)
	}
	return &gateway.ConfirmationResult{
		Verified:     true,
		ProviderRef:  order.ProviderRef,
		Confirmation: &model.Confirmation{Provider: string(g.MethodVal), TransactionID: "txn"},
	}, nil
}

// GatewayResolverStub maps methods to gateways.
type GatewayResolverStub map[model.PaymentMethod]gateway.Gateway

// Get returns the registered gateway or ErrUnknownMethod.
func (r GatewayResolverStub) Get(method model.PaymentMethod) (gateway.Gateway, error) {
	g, ok := r[method]
	if !ok {
		return nil, domainErrors.ErrUnknownMethod
	}
	return g, nil
}

// WebhookParserStub returns a preset event.
type WebhookParserStub struct {
	Event *gateway.WebhookEvent
	Err   error
}

// ParseWebhook returns the configured event or error.
func (w WebhookParserStub) ParseWebhook([]byte, string) (*gateway.WebhookEvent, error) {
	return w.Event, w.Err
}

// PublisherStub records published events.
type PublisherStub struct {
	Err    error
	events []events.OrderEvent
	mu     sync.Mutex
}

// Publish stores the event even when Err is set.
func (p *PublisherStub) Publish(ctx context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Types lists recorded event types in publication order.
func (p *PublisherStub) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// Events returns a copy of recorded events.
func (p *PublisherStub) Events() []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderEvent(nil), p.events...)
}

var _ gateway.Gateway = (*GatewayStub)(nil)
var _ events.Publisher = (*PublisherStub)(nil)
