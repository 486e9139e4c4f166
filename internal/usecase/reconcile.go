package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/polkiloo/beautymart/internal/adapter/events"
	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/domain/repository"
)

// Outcome is the terminal state of a payment callback.
type Outcome string

const (
	OutcomePaid        Outcome = "paid"
	OutcomeAlreadyPaid Outcome = "already_paid"
	OutcomeDeleted     Outcome = "deleted"
)

// WebhookParser authenticates and decodes card gateway webhooks.
type WebhookParser interface {
	ParseWebhook(body []byte, signatureHeader string) (*gateway.WebhookEvent, error)
}

// ReconcileUseCase settles pending orders from provider callbacks.
type ReconcileUseCase struct {
	orders   repository.OrderRepository
	gateways GatewayResolver
	webhooks WebhookParser
	notifier notifier
	logger   *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(orders repository.OrderRepository, gateways GatewayResolver, webhooks WebhookParser, publisher events.Publisher, logger *slog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{
		orders:   orders,
		gateways: gateways,
		webhooks: webhooks,
		notifier: newNotifier(publisher, logger),
		logger:   logger,
	}
}

// Confirm applies a provider callback for orderID on behalf of userID.
// Provider errors leave the order pending so the callback can be retried.
func (u *ReconcileUseCase) Confirm(ctx context.Context, userID int64, method model.PaymentMethod, orderID string, payload gateway.Payload) (Outcome, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return "", domainErrors.ErrNotFound
	}

	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if order.UserID != userID {
		return "", domainErrors.ErrNotFound
	}
	if order.PaymentMethod != method {
		return "", domainErrors.ErrPaymentMethodMismatch
	}
	if order.Payment {
		return OutcomeAlreadyPaid, nil
	}
	if err := checkPayload(method, payload); err != nil {
		return "", err
	}

	if method != model.PaymentRazorpay && !payload.Success {
		if err := u.discard(ctx, order); err != nil {
			return "", err
		}
		return OutcomeDeleted, nil
	}

	gw, err := u.gateways.Get(method)
	if err != nil {
		return "", err
	}
	// Keeps the sweeper off the order while the provider captures the payment.
	touched, err := u.orders.TouchPending(ctx, order.ID)
	if err != nil {
		return "", err
	}
	if !touched {
		if _, err := u.orders.GetByID(ctx, order.ID); err != nil {
			return "", err
		}
		return OutcomeAlreadyPaid, nil
	}
	result, err := gw.Confirm(ctx, order, payload)
	if err != nil {
		return "", err
	}

	if !result.Verified {
		if err := u.discard(ctx, order); err != nil {
			return "", err
		}
		if method == model.PaymentRazorpay {
			return "", domainErrors.ErrInvalidSignature
		}
		return "", domainErrors.ErrPaymentNotVerified
	}

	return u.markPaid(ctx, order, result.Confirmation)
}

// checkPayload rejects callbacks that lack the fields their provider always
// sends. It runs before the order is touched.
func checkPayload(method model.PaymentMethod, payload gateway.Payload) error {
	switch method {
	case model.PaymentPayPal:
		if payload.PaymentID == "" || payload.PayerID == "" {
			return domainErrors.Invalid("paymentId and payerId are required")
		}
	case model.PaymentRazorpay:
		if payload.ProviderOrderID == "" || payload.PaymentID == "" || payload.Signature == "" {
			return domainErrors.Invalid("razorpay order id, payment id and signature are required")
		}
	}
	return nil
}

// HandleStripeWebhook settles orders from checkout session events. Events
// that reference unknown or foreign sessions are acknowledged and ignored.
func (u *ReconcileUseCase) HandleStripeWebhook(ctx context.Context, body []byte, signatureHeader string) error {
	event, err := u.webhooks.ParseWebhook(body, signatureHeader)
	if err != nil {
		return err
	}

	if event.Type != gateway.StripeEventCompleted && event.Type != gateway.StripeEventExpired {
		return nil
	}

	order, err := u.webhookOrder(ctx, event)
	if err != nil || order == nil {
		return err
	}

	switch event.Type {
	case gateway.StripeEventCompleted:
		if event.PaymentStatus != "paid" {
			return nil
		}
		_, err = u.markPaid(ctx, order, &model.Confirmation{
			Provider:        "stripe",
			ProviderOrderID: event.SessionID,
			State:           event.PaymentStatus,
		})
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	default:
		return u.discard(ctx, order)
	}
}

func (u *ReconcileUseCase) webhookOrder(ctx context.Context, event *gateway.WebhookEvent) (*model.Order, error) {
	id, err := uuid.Parse(event.ClientReferenceID)
	if err != nil {
		u.logger.Warn("webhook without order reference", slog.String("event_id", event.ID))
		return nil, nil
	}
	order, err := u.orders.GetByID(ctx, id)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != model.PaymentStripe || order.ProviderRef != event.SessionID || order.Payment {
		return nil, nil
	}
	return order, nil
}

func (u *ReconcileUseCase) markPaid(ctx context.Context, order *model.Order, confirmation *model.Confirmation) (Outcome, error) {
	updated, err := u.orders.MarkPaid(ctx, order.ID, confirmation)
	if err != nil {
		return "", err
	}
	if !updated {
		// Lost a race against another callback or the sweeper.
		if _, err := u.orders.GetByID(ctx, order.ID); err != nil {
			return "", err
		}
		return OutcomeAlreadyPaid, nil
	}

	order.Payment = true
	order.Confirmation = confirmation
	u.notifier.notify(ctx, events.OrderPaid, order)
	return OutcomePaid, nil
}

func (u *ReconcileUseCase) discard(ctx context.Context, order *model.Order) error {
	deleted, err := u.orders.DeletePending(ctx, order.ID)
	if err != nil {
		return err
	}
	if deleted {
		u.notifier.notify(ctx, events.OrderDiscarded, order)
	}
	return nil
}
