package cart

import (
	"context"
	"errors"
	"sync"

	"food-ordering-api/kvstore"
	"food-ordering-api/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartKey is the slot a session's cart is persisted under
func CartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Engine owns one cart. It is the only writer of its key.
type Engine struct {
	mu     sync.Mutex
	state  models.CartState
	store  kvstore.Store
	key    string
	newID  func(menuItemID string) string
	logger *zap.Logger
}

type Option func(*Engine)

// WithIDGenerator overrides how line ids are minted
func WithIDGenerator(fn func(menuItemID string) string) Option {
	return func(e *Engine) { e.newID = fn }
}

func defaultID(menuItemID string) string {
	return menuItemID + "-" + uuid.NewString()
}

// NewEngine rehydrates the cart stored under key. A missing, unreadable or
// corrupt slot yields the empty cart.
func NewEngine(ctx context.Context, store kvstore.Store, key string, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		state:  EmptyState(),
		store:  store,
		key:    key,
		newID:  defaultID,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.load(ctx)
	return e
}

func (e *Engine) load(ctx context.Context) models.CartState {
	data, err := e.store.Get(ctx, e.key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return EmptyState()
	}
	if err != nil {
		e.logger.Warn("cart slot unreadable, starting empty", zap.String("key", e.key), zap.Error(err))
		return EmptyState()
	}
	state, err := Decode(data)
	if err != nil {
		e.logger.Warn("discarding stored cart", zap.String("key", e.key), zap.Error(err))
		return EmptyState()
	}
	return Reduce(EmptyState(), Load{State: state})
}

// Dispatch applies cmd and persists the resulting snapshot. Persistence
// failures are logged and never surface to the caller.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) models.CartState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = Reduce(e.state, cmd)
	e.persist(ctx)
	return e.state
}

func (e *Engine) persist(ctx context.Context) {
	data, err := Encode(e.state)
	if err != nil {
		e.logger.Error("encode cart", zap.String("key", e.key), zap.Error(err))
		return
	}
	if err := e.store.Set(ctx, e.key, data); err != nil {
		e.logger.Error("persist cart", zap.String("key", e.key), zap.Error(err))
	}
}

// State returns the current snapshot
func (e *Engine) State() models.CartState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// AddItem adds a line and reports whether a cart from another restaurant was
// discarded to make room.
func (e *Engine) AddItem(ctx context.Context, restaurant models.Restaurant, item models.MenuItem, quantity int, selected []models.SelectedOption) (models.CartState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	replaced := quantity >= 1 && WouldReplace(e.state, restaurant.ID)
	e.state = Reduce(e.state, AddItem{
		ItemID:          e.newID(item.ID),
		RestaurantID:    restaurant.ID,
		RestaurantName:  restaurant.Name,
		MenuItem:        item,
		Quantity:        quantity,
		SelectedOptions: selected,
	})
	e.persist(ctx)
	return e.state, replaced
}

func (e *Engine) RemoveItem(ctx context.Context, itemID string) models.CartState {
	return e.Dispatch(ctx, RemoveItem{ItemID: itemID})
}

func (e *Engine) UpdateQuantity(ctx context.Context, itemID string, quantity int) models.CartState {
	return e.Dispatch(ctx, UpdateQuantity{ItemID: itemID, Quantity: quantity})
}

func (e *Engine) Clear(ctx context.Context) models.CartState {
	return e.Dispatch(ctx, ClearCart{})
}

// Checkout hands the current snapshot to place and empties the cart only
// when place succeeds. The engine stays locked throughout, so no command
// lands between reading the cart and clearing it.
func (e *Engine) Checkout(ctx context.Context, place func(models.CartState) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := place(e.state); err != nil {
		return err
	}
	e.state = Reduce(e.state, ClearCart{})
	e.persist(ctx)
	return nil
}
