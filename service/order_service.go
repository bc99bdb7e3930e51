package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-ordering-api/confirmation"
	"food-ordering-api/events"
	"food-ordering-api/models"
	"food-ordering-api/pricing"
	"food-ordering-api/statemachine"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var defaultOrderFee = decimal.RequireFromString("5.99")

const defaultRestaurantName = "Restaurant"

// CreateOrderInput is an order submission. Lines are rebuilt from the
// restaurant's catalog entry, so client prices and totals are never trusted.
type CreateOrderInput struct {
	UserID          string
	RestaurantID    string
	RestaurantName  string
	Items           []models.CartItem
	DeliveryAddress *models.Address
	DeliveryFee     *decimal.Decimal
	PaymentMethod   string
}

type OrderService struct {
	orders    OrderStore
	catalog   RestaurantCatalog
	publisher events.Publisher
	scheduler *confirmation.Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

type OrderServiceOption func(*OrderService)

// WithConfirmDelay sets how long a new order waits before auto-confirmation
func WithConfirmDelay(d time.Duration) OrderServiceOption {
	return func(s *OrderService) {
		s.scheduler = confirmation.NewScheduler(d, s.autoConfirm)
	}
}

func WithNow(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(orders OrderStore, catalog RestaurantCatalog, publisher events.Publisher, logger *zap.Logger, opts ...OrderServiceOption) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NewLogPublisher(logger)
	}
	s := &OrderService{
		orders:    orders,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	s.scheduler = confirmation.NewScheduler(confirmation.DefaultDelay, s.autoConfirm)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder validates the submission, stores it as pending and arms the
// auto-confirmation.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	var missing []string
	if strings.TrimSpace(in.UserID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(in.RestaurantID) == "" {
		missing = append(missing, "restaurantId")
	}
	if in.Items == nil {
		missing = append(missing, "items")
	}
	if in.DeliveryAddress == nil {
		missing = append(missing, "deliveryAddress")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: required fields missing: %s", models.ErrValidation, strings.Join(missing, ", "))
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: the order must contain at least one item", models.ErrValidation)
	}
	if err := in.DeliveryAddress.Validate(); err != nil {
		return nil, err
	}

	restaurant, err := s.catalog.FindByID(ctx, in.RestaurantID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown restaurant %s", models.ErrValidation, in.RestaurantID)
	}
	if err != nil {
		return nil, err
	}
	if !restaurant.IsOpen {
		return nil, fmt.Errorf("%w: restaurant %s is closed", models.ErrValidation, restaurant.Name)
	}
	name := in.RestaurantName
	if name == "" {
		name = restaurant.Name
	}
	if name == "" {
		name = defaultRestaurantName
	}

	items := make([]models.CartItem, len(in.Items))
	total := decimal.Zero
	for i, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has quantity %d", models.ErrValidation, i, it.Quantity)
		}
		if it.RestaurantID == "" {
			it.RestaurantID = in.RestaurantID
		}
		if it.RestaurantID != in.RestaurantID {
			return nil, fmt.Errorf("%w: item %d belongs to restaurant %s", models.ErrValidation, i, it.RestaurantID)
		}
		if it.RestaurantName == "" {
			it.RestaurantName = name
		}
		line, err := catalogLine(restaurant, it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		total = total.Add(line.TotalPrice)
		items[i] = line
	}

	fee := defaultOrderFee
	if in.DeliveryFee != nil && in.DeliveryFee.IsPositive() {
		fee = *in.DeliveryFee
	}
	payment := in.PaymentMethod
	if payment == "" {
		payment = models.DefaultPaymentMethod
	}

	order := &models.Order{
		UserID:          in.UserID,
		RestaurantID:    in.RestaurantID,
		RestaurantName:  name,
		Items:           items,
		TotalAmount:     total,
		DeliveryFee:     fee,
		DeliveryAddress: *in.DeliveryAddress,
		PaymentMethod:   payment,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	s.publish(ctx, order, "")
	s.scheduler.Schedule(order.ID)
	return order, nil
}

// catalogLine rebuilds a submitted line from the restaurant's menu. Only the
// menu item id, quantity and picked option/choice ids are taken from the
// submission; the item snapshot and every price come from the catalog.
func catalogLine(restaurant *models.Restaurant, it models.CartItem) (models.CartItem, error) {
	item, ok := restaurant.FindMenuItem(it.MenuItem.ID)
	if !ok {
		return models.CartItem{}, fmt.Errorf("%w: %q is not on the menu of %s", models.ErrValidation, it.MenuItem.ID, restaurant.Name)
	}
	picks := pricing.Picks{}
	for _, so := range it.SelectedOptions {
		picks[so.OptionID] = append(picks[so.OptionID], so.ChoiceID)
	}
	selected, err := pricing.ResolveSelection(*item, picks)
	if err != nil {
		return models.CartItem{}, err
	}

	it.MenuItem = *item
	it.SelectedOptions = selected
	it.TotalPrice = pricing.ComputeLinePrice(*item, selected, it.Quantity)
	return it, nil
}

// Checkout turns a cart snapshot into an order
func (s *OrderService) Checkout(ctx context.Context, cart models.CartState, userID string, address *models.Address, paymentMethod string) (*models.Order, error) {
	if cart.IsEmpty() {
		return nil, fmt.Errorf("%w: cart is empty", models.ErrValidation)
	}
	fee := cart.DeliveryFee
	return s.CreateOrder(ctx, CreateOrderInput{
		UserID:          userID,
		RestaurantID:    cart.RestaurantID,
		RestaurantName:  cart.RestaurantName,
		Items:           cart.Items,
		DeliveryAddress: address,
		DeliveryFee:     &fee,
		PaymentMethod:   paymentMethod,
	})
}

func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	return s.orders.List(ctx, filter)
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// Cancel is the customer cancellation, allowed while pending or confirmed
func (s *OrderService) Cancel(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !statemachine.IsCancellable(order.Status) {
		return nil, fmt.Errorf("%w: order %s is %s and can no longer be cancelled",
			models.ErrInvalidTransition, id, order.Status)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, order.Status, models.StatusCancelled, nil, "Cancelled by customer")
	if err != nil {
		return nil, err
	}
	s.scheduler.Cancel(id)
	s.logger.Info("order cancelled", zap.String("order_id", id), zap.String("from", string(order.Status)))
	s.publish(ctx, updated, order.Status)
	return updated, nil
}

// UpdateStatus moves an order along the lifecycle table
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to models.OrderStatus, note string) (*models.Order, error) {
	if !statemachine.IsValid(to) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, to)
	}
	if to == models.StatusCancelled {
		return s.Cancel(ctx, id)
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(order.Status, to); err != nil {
		return nil, err
	}

	var courier *models.DeliveryPerson
	if to == models.StatusConfirmed {
		courier = AssignCourier(id)
	}
	updated, err := s.orders.UpdateStatus(ctx, id, order.Status, to, courier, note)
	if err != nil {
		return nil, err
	}
	if to == models.StatusConfirmed {
		s.scheduler.Cancel(id)
	}
	s.logger.Info("order status updated",
		zap.String("order_id", id),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)))
	s.publish(ctx, updated, order.Status)
	return updated, nil
}

func (s *OrderService) History(ctx context.Context, id string) ([]models.OrderStatusHistory, error) {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.orders.History(ctx, id)
}

// autoConfirm runs on the scheduler. The status is re-read so an order that
// was cancelled meanwhile stays cancelled.
func (s *OrderService) autoConfirm(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		s.logger.Warn("auto-confirm: order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	if order.Status != models.StatusPending {
		s.logger.Debug("auto-confirm skipped", zap.String("order_id", orderID), zap.String("status", string(order.Status)))
		return
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, models.StatusPending, models.StatusConfirmed, AssignCourier(orderID), "Confirmed automatically")
	if errors.Is(err, models.ErrInvalidTransition) {
		s.logger.Debug("auto-confirm lost a race", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	if err != nil {
		s.logger.Error("auto-confirm failed", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	s.logger.Info("order auto-confirmed", zap.String("order_id", orderID))
	s.publish(ctx, updated, models.StatusPending)
}

func (s *OrderService) publish(ctx context.Context, order *models.Order, prev models.OrderStatus) {
	ev := events.NewStatusEvent(order, prev)
	if err := s.publisher.PublishStatus(ctx, ev); err != nil {
		s.logger.Error("failed to publish order event",
			zap.String("order_id", order.ID),
			zap.String("status", string(order.Status)),
			zap.Error(err))
	}
}

// PendingConfirmations is the number of armed auto-confirmations
func (s *OrderService) PendingConfirmations() int {
	return s.scheduler.Pending()
}

// Shutdown drops pending auto-confirmations
func (s *OrderService) Shutdown() {
	s.scheduler.Stop()
}
