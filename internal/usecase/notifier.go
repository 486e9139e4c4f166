package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/beautymart/internal/adapter/events"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

const publishTimeout = 2 * time.Second

// notifier publishes order events on a best effort basis. A publish outlives
// request cancellation but never runs longer than timeout.
type notifier struct {
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
	timeout   time.Duration
}

func newNotifier(publisher events.Publisher, logger *slog.Logger) notifier {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return notifier{publisher: publisher, logger: logger, now: time.Now, timeout: publishTimeout}
}

func (n notifier) notify(ctx context.Context, eventType string, order *model.Order) {
	event := events.NewOrderEvent(eventType, order, n.now())
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Warn("order event not published",
			slog.String("type", eventType),
			slog.String("order_id", event.OrderID),
			slog.String("error", err.Error()),
		)
	}
}
