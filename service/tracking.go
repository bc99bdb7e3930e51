package service

import (
	"context"
	"time"

	"food-ordering-api/models"
	"food-ordering-api/statemachine"
)

// TrackingView is what the order page shows while an order is underway
type TrackingView struct {
	OrderID           string                    `json:"orderId"`
	Status            models.OrderStatus        `json:"status"`
	Label             string                    `json:"label"`
	Description       string                    `json:"description"`
	Checkpoints       []statemachine.Checkpoint `json:"checkpoints"`
	EstimatedDelivery time.Time                 `json:"estimatedDelivery"`
	RemainingMinutes  int                       `json:"remainingMinutes"`
	Cancellable       bool                      `json:"cancellable"`
	NextStatuses      []models.OrderStatus      `json:"nextStatuses"`
	DeliveryPerson    *models.DeliveryPerson    `json:"deliveryPerson,omitempty"`
}

// Tracking derives the progress view of an order at the current time
func (s *OrderService) Tracking(ctx context.Context, id string) (*TrackingView, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildTracking(order, s.now()), nil
}

func BuildTracking(order *models.Order, now time.Time) *TrackingView {
	info := statemachine.Describe(order.Status)
	remaining := 0
	if !statemachine.IsTerminal(order.Status) {
		remaining = statemachine.RemainingMinutes(order.EstimatedDelivery, now)
	}
	return &TrackingView{
		OrderID:           order.ID,
		Status:            order.Status,
		Label:             info.Label,
		Description:       info.Description,
		Checkpoints:       statemachine.Progress(order.Status),
		EstimatedDelivery: order.EstimatedDelivery,
		RemainingMinutes:  remaining,
		Cancellable:       statemachine.IsCancellable(order.Status),
		NextStatuses:      statemachine.ValidTransitionsFrom(order.Status),
		DeliveryPerson:    order.DeliveryPerson,
	}
}
