// Package cart owns the shopping cart state machine: a pure reducer over
// CartState plus an Engine that persists every snapshot to a key-value slot.
package cart

import (
	"food-ordering-api/models"
	"food-ordering-api/pricing"

	"github.com/shopspring/decimal"
)

// DefaultDeliveryFee is the flat fee every fresh cart starts with
var DefaultDeliveryFee = decimal.RequireFromString("5.99")

// EmptyState returns the canonical empty cart
func EmptyState() models.CartState {
	return models.CartState{
		Items:       []models.CartItem{},
		TotalAmount: decimal.Zero,
		DeliveryFee: DefaultDeliveryFee,
	}
}

// Command is one of AddItem, RemoveItem, UpdateQuantity, ClearCart or Load
type Command interface {
	isCommand()
}

// AddItem appends a new line. ItemID is chosen by the caller so the reducer
// stays deterministic.
type AddItem struct {
	ItemID          string
	RestaurantID    string
	RestaurantName  string
	MenuItem        models.MenuItem
	Quantity        int
	SelectedOptions []models.SelectedOption
}

type RemoveItem struct {
	ItemID string
}

// UpdateQuantity with Quantity <= 0 removes the line
type UpdateQuantity struct {
	ItemID   string
	Quantity int
}

type ClearCart struct{}

// Load replaces the state wholesale; used when rehydrating
type Load struct {
	State models.CartState
}

func (AddItem) isCommand()        {}
func (RemoveItem) isCommand()     {}
func (UpdateQuantity) isCommand() {}
func (ClearCart) isCommand()      {}
func (Load) isCommand()           {}

// Reduce applies cmd to state and returns the next snapshot. It never
// mutates state and never fails: unknown ids and non-positive add quantities
// leave the cart unchanged.
func Reduce(state models.CartState, cmd Command) models.CartState {
	switch c := cmd.(type) {
	case AddItem:
		return addItem(state, c)
	case RemoveItem:
		return removeItem(state, c.ItemID)
	case UpdateQuantity:
		return updateQuantity(state, c)
	case ClearCart:
		return EmptyState()
	case Load:
		return c.State
	default:
		return state
	}
}

// WouldReplace reports whether adding from restaurantID discards the
// current cart.
func WouldReplace(state models.CartState, restaurantID string) bool {
	return !state.IsEmpty() && state.RestaurantID != restaurantID
}

func addItem(state models.CartState, c AddItem) models.CartState {
	if c.Quantity < 1 {
		return state
	}
	if WouldReplace(state, c.RestaurantID) {
		state = EmptyState()
	}

	selected := append([]models.SelectedOption{}, c.SelectedOptions...)
	line := models.CartItem{
		ID:              c.ItemID,
		RestaurantID:    c.RestaurantID,
		RestaurantName:  c.RestaurantName,
		MenuItem:        c.MenuItem,
		Quantity:        c.Quantity,
		SelectedOptions: selected,
	}
	line.TotalPrice = lineTotal(line)

	items := make([]models.CartItem, 0, len(state.Items)+1)
	items = append(items, state.Items...)
	items = append(items, line)

	next := withItems(state, items)
	if next.RestaurantID == "" {
		next.RestaurantID = c.RestaurantID
		next.RestaurantName = c.RestaurantName
	}
	return next
}

func removeItem(state models.CartState, itemID string) models.CartState {
	items := make([]models.CartItem, 0, len(state.Items))
	for _, it := range state.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	return withItems(state, items)
}

func updateQuantity(state models.CartState, c UpdateQuantity) models.CartState {
	if c.Quantity <= 0 {
		return removeItem(state, c.ItemID)
	}
	items := make([]models.CartItem, len(state.Items))
	for i, it := range state.Items {
		if it.ID == c.ItemID {
			it.Quantity = c.Quantity
			it.TotalPrice = lineTotal(it)
		}
		items[i] = it
	}
	return withItems(state, items)
}

func lineTotal(it models.CartItem) decimal.Decimal {
	return pricing.ComputeLinePrice(it.MenuItem, it.SelectedOptions, it.Quantity)
}

// withItems installs items and re-derives every aggregate from them
func withItems(state models.CartState, items []models.CartItem) models.CartState {
	state.Items = items
	state.TotalItems = 0
	state.TotalAmount = decimal.Zero
	for _, it := range items {
		state.TotalItems += it.Quantity
		state.TotalAmount = state.TotalAmount.Add(it.TotalPrice)
	}
	if len(items) == 0 {
		state.RestaurantID = ""
		state.RestaurantName = ""
	}
	return state
}
