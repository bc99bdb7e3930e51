package service

import (
	"context"
	"fmt"

	"food-ordering-api/cart"
	"food-ordering-api/models"
	"food-ordering-api/pricing"

	"go.uber.org/zap"
)

type AddToCartInput struct {
	RestaurantID string
	MenuItemID   string
	Quantity     int
	Picks        pricing.Picks
}

// AddResult reports the new cart and whether a cart from another restaurant
// was discarded.
type AddResult struct {
	Cart     models.CartState
	Replaced bool
}

// CartService validates cart requests against the catalog before they reach
// the engine, which never fails.
type CartService struct {
	sessions *cart.Sessions
	catalog  RestaurantCatalog
	orders   *OrderService
	logger   *zap.Logger
}

func NewCartService(sessions *cart.Sessions, catalog RestaurantCatalog, orders *OrderService, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{sessions: sessions, catalog: catalog, orders: orders, logger: logger}
}

func (s *CartService) Get(ctx context.Context, sessionID string) models.CartState {
	return s.sessions.Get(ctx, sessionID).State()
}

func (s *CartService) AddItem(ctx context.Context, sessionID string, in AddToCartInput) (*AddResult, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	}
	restaurant, err := s.catalog.FindByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsOpen {
		return nil, fmt.Errorf("%w: restaurant %s is closed", models.ErrValidation, restaurant.Name)
	}
	item, ok := restaurant.FindMenuItem(in.MenuItemID)
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", in.MenuItemID, models.ErrNotFound)
	}
	selected, err := pricing.ResolveSelection(*item, in.Picks)
	if err != nil {
		return nil, err
	}

	engine := s.sessions.Get(ctx, sessionID)
	state, replaced := engine.AddItem(ctx, *restaurant, *item, in.Quantity, selected)
	if replaced {
		s.logger.Info("cart replaced by another restaurant",
			zap.String("session", sessionID),
			zap.String("restaurant_id", restaurant.ID))
	}
	return &AddResult{Cart: state, Replaced: replaced}, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes it
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) models.CartState {
	return s.sessions.Get(ctx, sessionID).UpdateQuantity(ctx, itemID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) models.CartState {
	return s.sessions.Get(ctx, sessionID).RemoveItem(ctx, itemID)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) models.CartState {
	return s.sessions.Get(ctx, sessionID).Clear(ctx)
}

// Checkout places an order from the session's cart and empties the cart
// once the order is stored.
func (s *CartService) Checkout(ctx context.Context, sessionID, userID string, address *models.Address, paymentMethod string) (*models.Order, error) {
	var order *models.Order
	err := s.sessions.Get(ctx, sessionID).Checkout(ctx, func(state models.CartState) error {
		var err error
		order, err = s.orders.Checkout(ctx, state, userID, address, paymentMethod)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
