package cart

import (
	"encoding/json"
	"fmt"

	"food-ordering-api/models"
)

// Encode serializes the full snapshot
func Encode(state models.CartState) ([]byte, error) {
	return json.Marshal(state)
}

// Decode parses a stored snapshot and checks the cart invariants. Aggregates
// are re-derived from the lines rather than trusted. Any failure wraps
// models.ErrStorageCorrupt.
func Decode(data []byte) (models.CartState, error) {
	var state models.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.CartState{}, fmt.Errorf("%w: %v", models.ErrStorageCorrupt, err)
	}

	if state.Items == nil {
		state.Items = []models.CartItem{}
	}
	if len(state.Items) == 0 && (state.RestaurantID != "" || state.RestaurantName != "") {
		return models.CartState{}, fmt.Errorf("%w: empty cart bound to restaurant %q", models.ErrStorageCorrupt, state.RestaurantID)
	}
	for _, it := range state.Items {
		if it.ID == "" {
			return models.CartState{}, fmt.Errorf("%w: line without id", models.ErrStorageCorrupt)
		}
		if it.Quantity < 1 {
			return models.CartState{}, fmt.Errorf("%w: line %s has quantity %d", models.ErrStorageCorrupt, it.ID, it.Quantity)
		}
		if it.RestaurantID != state.RestaurantID {
			return models.CartState{}, fmt.Errorf("%w: line %s belongs to restaurant %q, cart is bound to %q",
				models.ErrStorageCorrupt, it.ID, it.RestaurantID, state.RestaurantID)
		}
	}
	if state.DeliveryFee.IsNegative() {
		return models.CartState{}, fmt.Errorf("%w: negative delivery fee", models.ErrStorageCorrupt)
	}

	items := make([]models.CartItem, 0, len(state.Items))
	for _, it := range state.Items {
		it.TotalPrice = lineTotal(it)
		items = append(items, it)
	}
	return withItems(state, items), nil
}
