// Package notification provides the delivery side of business event
// notifications. Events are published to Redis channels; subscribers (the
// mobile app gateway, the SMS bridge) filter by each user's notification
// preferences before delivering anything.
package notification

import (
	"context"
	"encoding/json"

	"github.com/aquagest/backend/internal/application/notification"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis channels, one per event type
const (
	ChannelOrderValidated = "aquagest:events:order-validated"
	ChannelOrderConverted = "aquagest:events:order-converted"
	ChannelLowStock       = "aquagest:events:low-stock"
)

// RedisNotifier publishes events as JSON to Redis pub/sub channels.
// Publishing is fire-and-forget: failures are logged, never returned.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a new RedisNotifier
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// OrderValidated publishes an order-validated event
func (n *RedisNotifier) OrderValidated(ctx context.Context, event notification.OrderValidatedEvent) {
	n.publish(ctx, ChannelOrderValidated, event)
}

// OrderConverted publishes an order-converted event
func (n *RedisNotifier) OrderConverted(ctx context.Context, event notification.OrderConvertedEvent) {
	n.publish(ctx, ChannelOrderConverted, event)
}

// LowStock publishes a low-stock event
func (n *RedisNotifier) LowStock(ctx context.Context, event notification.LowStockEvent) {
	n.publish(ctx, ChannelLowStock, event)
}

func (n *RedisNotifier) publish(ctx context.Context, channel string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to marshal notification event",
			zap.String("channel", channel),
			zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.Warn("failed to publish notification event",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

var _ notification.Notifier = (*RedisNotifier)(nil)

// LogNotifier writes events to the application log. Used when no Redis
// backend is configured, typically in development.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// OrderValidated logs the event
func (n *LogNotifier) OrderValidated(_ context.Context, event notification.OrderValidatedEvent) {
	n.logger.Info("order validated",
		zap.String("order_number", event.OrderNumber),
		zap.String("client", event.ClientName),
		zap.String("total", event.TotalAmount.String()))
}

// OrderConverted logs the event
func (n *LogNotifier) OrderConverted(_ context.Context, event notification.OrderConvertedEvent) {
	n.logger.Info("order converted to sale",
		zap.String("order_number", event.OrderNumber),
		zap.String("sale_number", event.SaleNumber))
}

// LowStock logs the event
func (n *LogNotifier) LowStock(_ context.Context, event notification.LowStockEvent) {
	n.logger.Warn("product below reorder threshold",
		zap.String("product_code", event.ProductCode),
		zap.Int("on_hand", event.OnHand),
		zap.Int("threshold", event.Threshold))
}

var _ notification.Notifier = (*LogNotifier)(nil)
