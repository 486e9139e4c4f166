package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/beautymart/internal/adapter/events"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/domain/repository"
)

// OrderUseCase serves order history, admin status updates and retention.
type OrderUseCase struct {
	orders   repository.OrderRepository
	notifier notifier
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, publisher events.Publisher, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, notifier: newNotifier(publisher, logger)}
}

// ListByUser returns the user's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// ListAll returns every order for the back office.
func (u *OrderUseCase) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := u.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		for j := range orders[i].Items {
			if orders[i].Items[j].Image == nil {
				orders[i].Items[j].Image = model.ImageList{}
			}
		}
	}
	return orders, nil
}

// UpdateStatus sets the fulfilment status of an order.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, orderID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return domainErrors.Invalid("status is required")
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return domainErrors.ErrNotFound
	}
	if err := u.orders.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	// The update is durable at this point; a failed reload only skips the event.
	if order, err := u.orders.GetByID(ctx, id); err == nil {
		u.notifier.notify(ctx, events.OrderStatusChanged, order)
	}
	return nil
}

// StalePending lists unpaid gateway orders untouched since the cutoff.
func (u *OrderUseCase) StalePending(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	return u.orders.SelectStalePending(ctx, before, limit)
}

// DiscardStale deletes an abandoned order if it is still unpaid and nothing
// touched it since the cutoff.
func (u *OrderUseCase) DiscardStale(ctx context.Context, id uuid.UUID, before time.Time) (bool, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	deleted, err := u.orders.DeleteStale(ctx, id, before)
	if err != nil || !deleted {
		return false, err
	}
	u.notifier.notify(ctx, events.OrderDiscarded, order)
	return true, nil
}
