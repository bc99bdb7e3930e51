package cart

import (
	"testing"

	"food-ordering-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got)
}

func menuItem(id, price string) models.MenuItem {
	return models.MenuItem{
		ID:        id,
		Name:      id,
		Price:     money(price),
		Available: true,
		Options:   []models.MenuOption{},
	}
}

func add(id, restaurantID, menuID, price string, qty int) AddItem {
	return AddItem{
		ItemID:         id,
		RestaurantID:   restaurantID,
		RestaurantName: "Restaurant " + restaurantID,
		MenuItem:       menuItem(menuID, price),
		Quantity:       qty,
	}
}

func TestReduceScenario(t *testing.T) {
	s := EmptyState()

	s = Reduce(s, add("a", "R1", "pizza", "42.90", 1))
	assertMoney(t, "42.90", s.TotalAmount)
	assert.Equal(t, 1, s.TotalItems)
	assert.Equal(t, "R1", s.RestaurantID)
	assert.Equal(t, "Restaurant R1", s.RestaurantName)

	s = Reduce(s, add("b", "R1", "soda", "5.90", 2))
	assertMoney(t, "54.70", s.TotalAmount)
	assert.Equal(t, 3, s.TotalItems)

	s = Reduce(s, UpdateQuantity{ItemID: "a", Quantity: 2})
	assertMoney(t, "97.60", s.TotalAmount)
	assertMoney(t, "85.80", s.Items[0].TotalPrice)
	assert.Equal(t, 4, s.TotalItems)

	s = Reduce(s, ClearCart{})
	assertMoney(t, "0", s.TotalAmount)
	assert.Empty(t, s.Items)
	assert.Equal(t, EmptyState(), s)
}

func TestReduceSumInvariant(t *testing.T) {
	prices := []string{"12.50", "0.99", "33.33", "7", "19.90"}
	s := EmptyState()
	for i, p := range prices {
		s = Reduce(s, add(string(rune('a'+i)), "R1", "item", p, i+1))

		wantAmount := decimal.Zero
		wantItems := 0
		for _, it := range s.Items {
			wantAmount = wantAmount.Add(lineTotal(it))
			wantItems += it.Quantity
		}
		assert.True(t, wantAmount.Equal(s.TotalAmount))
		assert.Equal(t, wantItems, s.TotalItems)
	}
	assert.Len(t, s.Items, len(prices))
}

func TestReduceOptionsPricedIntoLine(t *testing.T) {
	item := menuItem("burger", "29.90")
	cmd := AddItem{
		ItemID:       "x",
		RestaurantID: "R1",
		MenuItem:     item,
		Quantity:     3,
		SelectedOptions: []models.SelectedOption{
			{OptionID: "extras", ChoiceID: "bacon", Price: money("5.00")},
			{OptionID: "extras", ChoiceID: "cheese", Price: money("3.00")},
		},
	}
	s := Reduce(EmptyState(), cmd)
	require.Len(t, s.Items, 1)
	assertMoney(t, "113.70", s.Items[0].TotalPrice)
	assertMoney(t, "113.70", s.TotalAmount)

	cmd.SelectedOptions[0].Price = money("100")
	assertMoney(t, "5.00", s.Items[0].SelectedOptions[0].Price)
}

func TestReduceCrossRestaurantReplacesCart(t *testing.T) {
	s := Reduce(EmptyState(), add("a", "R1", "pizza", "42.90", 1))
	s = Reduce(s, add("b", "R1", "soda", "5.90", 1))
	assert.True(t, WouldReplace(s, "R2"))
	assert.False(t, WouldReplace(s, "R1"))

	s = Reduce(s, add("c", "R2", "sushi", "60", 1))
	require.Len(t, s.Items, 1)
	assert.Equal(t, "c", s.Items[0].ID)
	assert.Equal(t, "R2", s.RestaurantID)
	assert.Equal(t, "Restaurant R2", s.RestaurantName)
	assertMoney(t, "60", s.TotalAmount)
	assert.Equal(t, 1, s.TotalItems)
}

func TestReduceRemove(t *testing.T) {
	s := Reduce(EmptyState(), add("a", "R1", "pizza", "42.90", 1))
	s = Reduce(s, add("b", "R1", "soda", "5.90", 2))

	once := Reduce(s, RemoveItem{ItemID: "a"})
	twice := Reduce(once, RemoveItem{ItemID: "a"})
	assert.Equal(t, once, twice)
	assertMoney(t, "11.80", once.TotalAmount)
	assert.Equal(t, "R1", once.RestaurantID)

	last := Reduce(once, RemoveItem{ItemID: "b"})
	assert.Empty(t, last.Items)
	assert.Empty(t, last.RestaurantID)
	assert.Empty(t, last.RestaurantName)
	assert.Equal(t, 0, last.TotalItems)
	assert.True(t, last.IsEmpty())
}

func TestReduceUpdateQuantityZeroEqualsRemove(t *testing.T) {
	s := Reduce(EmptyState(), add("a", "R1", "pizza", "42.90", 1))
	s = Reduce(s, add("b", "R1", "soda", "5.90", 2))

	for _, id := range []string{"a", "b", "missing"} {
		t.Run(id, func(t *testing.T) {
			assert.Equal(t, Reduce(s, RemoveItem{ItemID: id}), Reduce(s, UpdateQuantity{ItemID: id, Quantity: 0}))
			assert.Equal(t, Reduce(s, RemoveItem{ItemID: id}), Reduce(s, UpdateQuantity{ItemID: id, Quantity: -3}))
		})
	}
}

func TestReduceNoOps(t *testing.T) {
	s := Reduce(EmptyState(), add("a", "R1", "pizza", "42.90", 1))

	tests := []struct {
		name string
		cmd  Command
	}{
		{"update unknown id", UpdateQuantity{ItemID: "nope", Quantity: 4}},
		{"remove unknown id", RemoveItem{ItemID: "nope"}},
		{"add zero quantity", add("z", "R2", "x", "1", 0)},
		{"add negative quantity", add("z", "R1", "x", "1", -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Reduce(s, tt.cmd)
			assert.Equal(t, s.Items, next.Items)
			assert.True(t, s.TotalAmount.Equal(next.TotalAmount))
			assert.Equal(t, s.RestaurantID, next.RestaurantID)
		})
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Reduce(EmptyState(), add("a", "R1", "pizza", "42.90", 1))
	before := s.Items[0]

	_ = Reduce(s, UpdateQuantity{ItemID: "a", Quantity: 5})
	_ = Reduce(s, add("b", "R1", "soda", "5.90", 1))
	_ = Reduce(s, RemoveItem{ItemID: "a"})

	require.Len(t, s.Items, 1)
	assert.Equal(t, before, s.Items[0])
	assertMoney(t, "42.90", s.TotalAmount)
}

func TestClearCartFromAnyState(t *testing.T) {
	states := []models.CartState{
		EmptyState(),
		Reduce(EmptyState(), add("a", "R1", "pizza", "42.90", 3)),
		{Items: nil, DeliveryFee: money("12")},
	}
	for _, s := range states {
		assert.Equal(t, EmptyState(), Reduce(s, ClearCart{}))
	}
}

func TestLoadReplacesState(t *testing.T) {
	loaded := Reduce(EmptyState(), add("a", "R9", "pizza", "10", 1))
	s := Reduce(EmptyState(), add("b", "R1", "soda", "5.90", 2))
	assert.Equal(t, loaded, Reduce(s, Load{State: loaded}))
}
