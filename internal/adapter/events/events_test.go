package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/beautymart/internal/config"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testOrder() *model.Order {
	return &model.Order{
		ID:            uuid.MustParse("0b5b7f7a-64a4-4d5e-9c43-2a4b0f1d9e11"),
		UserID:        7,
		Amount:        decimal.RequireFromString("42.5"),
		PaymentMethod: model.PaymentStripe,
		Status:        model.DefaultOrderStatus,
	}
}

func TestNewOrderEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	event := NewOrderEvent(OrderPlaced, testOrder(), at)

	require.Equal(t, OrderPlaced, event.Type)
	require.Equal(t, "0b5b7f7a-64a4-4d5e-9c43-2a4b0f1d9e11", event.OrderID)
	require.Equal(t, int64(7), event.UserID)
	require.Equal(t, "42.50", event.Amount)
	require.Equal(t, model.PaymentStripe, event.PaymentMethod)
	require.Equal(t, time.UTC, event.OccurredAt.Location())
}

func TestKafkaPublisherPublish(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer, "orders", discardLogger())

	event := NewOrderEvent(OrderPaid, testOrder(), time.Now())
	require.NoError(t, publisher.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, event.OrderID, string(msg.Key))
	require.Equal(t, []kafka.Header{{Key: "type", Value: []byte(OrderPaid)}}, msg.Headers)

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, OrderPaid, decoded.Type)
	require.Equal(t, event.Amount, decoded.Amount)
}

func TestKafkaPublisherPublishError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	publisher := newKafkaPublisher(writer, "orders", discardLogger())

	err := publisher.Publish(context.Background(), NewOrderEvent(OrderDiscarded, testOrder(), time.Now()))
	require.ErrorContains(t, err, "publish order.discarded")
	require.ErrorIs(t, err, writer.err)
}

func TestKafkaPublisherClose(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer, "orders", discardLogger())

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)
}

func TestNewKafkaWriterDoesNotBlockCallers(t *testing.T) {
	writer := newKafkaWriter([]string{"127.0.0.1:1"}, "orders", discardLogger())
	defer writer.Close()

	require.True(t, writer.Async)
	require.LessOrEqual(t, writer.BatchTimeout, 50*time.Millisecond)
	require.Equal(t, writeAttempts, writer.MaxAttempts)
	require.NotNil(t, writer.Completion)

	start := time.Now()
	require.NoError(t, writer.WriteMessages(context.Background(), kafka.Message{Key: []byte("o-1"), Value: []byte("{}")}))
	require.Less(t, time.Since(start), time.Second)

	writer.Completion([]kafka.Message{{Key: []byte("o-1")}}, errors.New("broker down"))
}

func TestNopPublisher(t *testing.T) {
	require.NoError(t, NopPublisher{}.Publish(context.Background(), OrderEvent{}))
}

func TestModuleWithoutBrokers(t *testing.T) {
	var publisher Publisher
	app := fxtest.New(t,
		fx.Supply(&config.Config{}),
		fx.Supply(discardLogger()),
		Module,
		fx.Populate(&publisher),
	)
	app.RequireStart()
	app.RequireStop()

	require.IsType(t, NopPublisher{}, publisher)
}

func TestModuleWithBrokers(t *testing.T) {
	var publisher Publisher
	cfg := &config.Config{Kafka: config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, OrderTopic: "orders"}}
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Supply(discardLogger()),
		Module,
		fx.Populate(&publisher),
	)
	app.RequireStart()

	kafkaPublisher, ok := publisher.(*KafkaPublisher)
	require.True(t, ok)
	require.Equal(t, "orders", kafkaPublisher.topic)

	app.RequireStop()
}
