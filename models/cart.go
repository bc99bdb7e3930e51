package models

import "github.com/shopspring/decimal"

// SelectedOption is a choice resolved at add-to-cart time. The price is a
// copy, so later catalog edits never change an existing line.
type SelectedOption struct {
	OptionID   string          `json:"optionId"`
	OptionName string          `json:"optionName"`
	ChoiceID   string          `json:"choiceId"`
	ChoiceName string          `json:"choiceName"`
	Price      decimal.Decimal `json:"price"`
}

// CartItem is one add-to-cart action. Adding the same menu item twice yields
// two lines with distinct ids.
type CartItem struct {
	ID              string           `json:"id"`
	RestaurantID    string           `json:"restaurantId"`
	RestaurantName  string           `json:"restaurantName"`
	MenuItem        MenuItem         `json:"menuItem"`
	Quantity        int              `json:"quantity"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	TotalPrice      decimal.Decimal  `json:"totalPrice"`
}

// CartState is the whole cart snapshot. RestaurantID and RestaurantName are
// empty exactly when Items is empty.
type CartState struct {
	Items          []CartItem      `json:"items"`
	TotalItems     int             `json:"totalItems"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	RestaurantID   string          `json:"restaurantId,omitempty"`
	RestaurantName string          `json:"restaurantName,omitempty"`
}

// IsEmpty reports whether the cart has no lines
func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}
