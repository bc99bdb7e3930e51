// Package events publishes order status changes to a broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"food-ordering-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStatusEvent is emitted whenever an order is created or changes status
type OrderStatusEvent struct {
	EventID      string             `json:"event_id"`
	OrderID      string             `json:"order_id"`
	UserID       string             `json:"user_id"`
	RestaurantID string             `json:"restaurant_id"`
	FromStatus   models.OrderStatus `json:"from_status,omitempty"`
	Status       models.OrderStatus `json:"status"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Timestamp    time.Time          `json:"timestamp"`
}

// NewStatusEvent builds the event for order after a change from prev.
// prev is empty for a newly created order.
func NewStatusEvent(order *models.Order, prev models.OrderStatus) OrderStatusEvent {
	return OrderStatusEvent{
		EventID:      uuid.NewString(),
		OrderID:      order.ID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		FromStatus:   prev,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		Timestamp:    time.Now().UTC(),
	}
}

type Publisher interface {
	PublishStatus(ctx context.Context, ev OrderStatusEvent) error
	Close() error
}

// LogPublisher writes events to the log only
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishStatus(_ context.Context, ev OrderStatusEvent) error {
	p.logger.Info("order status event",
		zap.String("event_id", ev.EventID),
		zap.String("order_id", ev.OrderID),
		zap.String("from", string(ev.FromStatus)),
		zap.String("status", string(ev.Status)))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

func marshal(ev OrderStatusEvent) ([]byte, error) {
	return json.Marshal(ev)
}
