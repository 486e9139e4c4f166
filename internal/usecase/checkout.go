package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/beautymart/internal/adapter/events"
	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/domain/repository"
)

// GatewayResolver finds the adapter serving a payment method.
type GatewayResolver interface {
	Get(method model.PaymentMethod) (gateway.Gateway, error)
}

// CheckoutOptions carries deployment settings used when charging.
type CheckoutOptions struct {
	DeliveryFee decimal.Decimal
	// ClientURL wins over the request origin when building return URLs.
	ClientURL string
}

// CheckoutRequest is a validated intent to buy.
type CheckoutRequest struct {
	UserID  int64
	Items   []model.OrderItem
	Amount  decimal.Decimal
	Address model.Address
	Method  model.PaymentMethod
	Origin  string

	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
}

// CheckoutResult is the persisted order and, for gateways, how to pay it.
type CheckoutResult struct {
	Order  *model.Order
	Handle *gateway.PaymentHandle
}

// CheckoutUseCase places orders and starts gateway payments.
type CheckoutUseCase struct {
	orders   repository.OrderRepository
	gateways GatewayResolver
	notifier notifier
	logger   *slog.Logger
	opts     CheckoutOptions

	now   func() time.Time
	newID func() uuid.UUID
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(orders repository.OrderRepository, gateways GatewayResolver, publisher events.Publisher, logger *slog.Logger, opts CheckoutOptions) *CheckoutUseCase {
	return &CheckoutUseCase{
		orders:   orders,
		gateways: gateways,
		notifier: newNotifier(publisher, logger),
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// Place validates the request and creates the order. Cash on delivery
// orders clear the cart immediately; gateway orders stay pending until the
// provider confirms payment.
func (u *CheckoutUseCase) Place(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if err := ValidateCheckout(req); err != nil {
		return nil, err
	}

	if req.Method == model.PaymentCOD {
		order := u.newOrder(req)
		if err := u.orders.CreateAndClearCart(ctx, order); err != nil {
			return nil, err
		}
		u.notifier.notify(ctx, events.OrderPlaced, order)
		return &CheckoutResult{Order: order}, nil
	}

	gw, err := u.gateways.Get(req.Method)
	if err != nil {
		return nil, err
	}
	if err := gw.Configured(); err != nil {
		return nil, err
	}

	charge := gateway.Charge{
		DeliveryFee:   u.opts.DeliveryFee,
		ReturnBaseURL: u.returnBaseURL(req.Origin),
		Subtotal:      req.Subtotal,
		Discount:      req.Discount,
		Shipping:      req.Shipping,
	}
	if req.Method != model.PaymentRazorpay && charge.ReturnBaseURL == "" {
		return nil, domainErrors.Invalid("origin is required for redirect payments")
	}

	order := u.newOrder(req)
	if err := u.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	handle, err := gw.Initiate(ctx, order, charge)
	if err != nil {
		u.compensate(ctx, order.ID)
		return nil, err
	}

	if err := u.orders.SetProviderRef(ctx, order.ID, handle.ProviderRef); err != nil {
		u.compensate(ctx, order.ID)
		return nil, err
	}
	order.ProviderRef = handle.ProviderRef

	u.notifier.notify(ctx, events.OrderPlaced, order)
	return &CheckoutResult{Order: order, Handle: handle}, nil
}

func (u *CheckoutUseCase) newOrder(req CheckoutRequest) *model.Order {
	now := u.now().UTC()
	return &model.Order{
		ID:            u.newID(),
		UserID:        req.UserID,
		Items:         req.Items,
		Address:       req.Address,
		Amount:        req.Amount,
		PaymentMethod: req.Method,
		Status:        model.DefaultOrderStatus,
		Date:          now,
		UpdatedAt:     now,
	}
}

func (u *CheckoutUseCase) returnBaseURL(origin string) string {
	if u.opts.ClientURL != "" {
		return u.opts.ClientURL
	}
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}

// compensate removes a pending order whose payment never started.
func (u *CheckoutUseCase) compensate(ctx context.Context, id uuid.UUID) {
	if _, err := u.orders.DeletePending(context.WithoutCancel(ctx), id); err != nil {
		u.logger.Error("discard pending order after failed initiation",
			slog.String("order_id", id.String()),
			slog.String("error", err.Error()),
		)
	}
}
