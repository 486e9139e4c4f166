// Package events publishes order lifecycle changes for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/polkiloo/beautymart/internal/domain/model"
)

// Order event types.
const (
	OrderPlaced        = "order.placed"
	OrderPaid          = "order.paid"
	OrderDiscarded     = "order.discarded"
	OrderStatusChanged = "order.status_changed"
)

// OrderEvent is the JSON document written to the order topic.
type OrderEvent struct {
	Type          string              `json:"type"`
	OrderID       string              `json:"orderId"`
	UserID        int64               `json:"userId"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Amount        string              `json:"amount"`
	Payment       bool                `json:"payment"`
	Status        string              `json:"status"`
	OccurredAt    time.Time           `json:"occurredAt"`
}

// Publisher delivers order events.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NewOrderEvent snapshots order into an event of the given type.
func NewOrderEvent(eventType string, order *model.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID.String(),
		UserID:        order.UserID,
		PaymentMethod: order.PaymentMethod,
		Amount:        model.FormatAmount(order.Amount),
		Payment:       order.Payment,
		Status:        order.Status,
		OccurredAt:    at.UTC(),
	}
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
