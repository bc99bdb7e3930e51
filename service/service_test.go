package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"food-ordering-api/cart"
	"food-ordering-api/config"
	"food-ordering-api/events"
	"food-ordering-api/kvstore"
	"food-ordering-api/models"
	"food-ordering-api/pricing"
	"food-ordering-api/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderStatusEvent
}

func (p *recordingPublisher) PublishStatus(_ context.Context, ev events.OrderStatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) statuses() []models.OrderStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []models.OrderStatus{}
	for _, ev := range p.events {
		out = append(out, ev.Status)
	}
	return out
}

type fixture struct {
	orders    *repository.OrderRepository
	catalog   *repository.RestaurantRepository
	publisher *recordingPublisher
	svc       *OrderService
	carts     *CartService
}

func newFixture(t *testing.T, delay time.Duration, opts ...OrderServiceOption) *fixture {
	t.Helper()
	db, err := config.OpenDB(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	catalog := repository.NewRestaurantRepository(db)
	seed, err := repository.DefaultCatalog()
	require.NoError(t, err)
	_, err = catalog.Seed(context.Background(), seed)
	require.NoError(t, err)

	f := &fixture{
		orders:    repository.NewOrderRepository(db),
		catalog:   catalog,
		publisher: &recordingPublisher{},
	}
	f.svc = NewOrderService(f.orders, catalog, f.publisher, nil, append([]OrderServiceOption{WithConfirmDelay(delay)}, opts...)...)
	t.Cleanup(f.svc.Shutdown)
	f.carts = NewCartService(cart.NewSessions(kvstore.NewMemoryStore(), nil, cart.Limits{}), catalog, f.svc, nil)
	return f
}

func address() *models.Address {
	return &models.Address{
		Street:       "Rua das Flores",
		Number:       "123",
		Complement:   "Apto 45",
		Neighborhood: "Centro",
		City:         "São Paulo",
		ZipCode:      "01234-567",
	}
}

func pizzaLine(qty int) models.CartItem {
	return models.CartItem{
		ID:           "margherita-1",
		RestaurantID: "1",
		MenuItem: models.MenuItem{
			ID:      "margherita",
			Name:    "Pizza Margherita",
			Price:   decimal.RequireFromString("42.90"),
			Options: []models.MenuOption{},
		},
		Quantity: qty,
		SelectedOptions: []models.SelectedOption{
			{OptionID: "size", ChoiceID: "medium", Price: decimal.RequireFromString("8.00")},
		},
		TotalPrice: decimal.RequireFromString("1.00"),
	}
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		UserID:          "user1",
		RestaurantID:    "1",
		Items:           []models.CartItem{pizzaLine(2)},
		DeliveryAddress: address(),
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
		msg    string
	}{
		{"missing user", func(in *CreateOrderInput) { in.UserID = "" }, "userId"},
		{"missing restaurant", func(in *CreateOrderInput) { in.RestaurantID = "" }, "restaurantId"},
		{"missing items", func(in *CreateOrderInput) { in.Items = nil }, "items"},
		{"missing address", func(in *CreateOrderInput) { in.DeliveryAddress = nil }, "deliveryAddress"},
		{"empty items", func(in *CreateOrderInput) { in.Items = []models.CartItem{} }, "at least one item"},
		{"incomplete address", func(in *CreateOrderInput) { in.DeliveryAddress.ZipCode = "" }, "zipCode"},
		{"zero quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, "quantity"},
		{"foreign item", func(in *CreateOrderInput) { in.Items[0].RestaurantID = "2" }, "belongs to restaurant"},
		{"unknown restaurant", func(in *CreateOrderInput) { in.RestaurantID = "99" }, "unknown restaurant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := f.svc.CreateOrder(ctx, in)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.ErrorContains(t, err, tt.msg)
		})
	}

	orders, err := f.svc.List(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.publisher.statuses())
}

func TestCreateOrderDerivesTotalsAndDefaults(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("101.80").Equal(order.Items[0].TotalPrice))
	assert.True(t, decimal.RequireFromString("101.80").Equal(order.TotalAmount))
	assert.True(t, decimal.RequireFromString("5.99").Equal(order.DeliveryFee))
	assert.True(t, decimal.RequireFromString("107.79").Equal(order.GrandTotal()))
	assert.Equal(t, "Pizzaria Bella Napoli", order.RestaurantName)
	assert.Equal(t, models.DefaultPaymentMethod, order.PaymentMethod)
	assert.Nil(t, order.DeliveryPerson)
	assert.Equal(t, 45*time.Minute, order.EstimatedDelivery.Sub(order.CreatedAt))

	assert.Equal(t, []models.OrderStatus{models.StatusPending}, f.publisher.statuses())
	assert.Equal(t, 1, f.svc.PendingConfirmations())
}

func TestCreateOrderKeepsGivenFee(t *testing.T) {
	f := newFixture(t, time.Hour)
	in := validInput()
	fee := decimal.RequireFromString("8.99")
	in.DeliveryFee = &fee
	in.PaymentMethod = "pix"
	in.RestaurantName = "Bella"

	order, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, fee.Equal(order.DeliveryFee))
	assert.Equal(t, "pix", order.PaymentMethod)
	assert.Equal(t, "Bella", order.RestaurantName)
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	in := validInput()
	in.Items[0].MenuItem.Price = decimal.RequireFromString("-100")
	in.Items[0].MenuItem.Options = nil
	in.Items[0].SelectedOptions[0].Price = decimal.Zero
	order, err := f.svc.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("101.80").Equal(order.TotalAmount))
	line := order.Items[0]
	assert.True(t, decimal.RequireFromString("42.90").Equal(line.MenuItem.Price))
	require.Len(t, line.MenuItem.Options, 1)
	require.Len(t, line.SelectedOptions, 1)
	assert.Equal(t, "Medium", line.SelectedOptions[0].ChoiceName)
	assert.True(t, decimal.RequireFromString("8.00").Equal(line.SelectedOptions[0].Price))

	r, err := f.catalog.FindByID(ctx, "4")
	require.NoError(t, err)
	r.Menu[0].Items[0].Available = false
	_, err = f.catalog.Update(ctx, "4", models.RestaurantUpdate{Menu: r.Menu})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
		want   error
	}{
		{"required option unmet", func(in *CreateOrderInput) { in.Items[0].SelectedOptions = nil }, models.ErrMissingRequiredOption},
		{"unknown menu item", func(in *CreateOrderInput) { in.Items[0].MenuItem.ID = "feijoada" }, models.ErrValidation},
		{"unknown choice", func(in *CreateOrderInput) { in.Items[0].SelectedOptions[0].ChoiceID = "giant" }, models.ErrValidation},
		{"unavailable item", func(in *CreateOrderInput) {
			in.RestaurantID = "4"
			in.Items[0].RestaurantID = "4"
			in.Items[0].MenuItem.ID = "beef-tacos"
			in.Items[0].SelectedOptions = nil
		}, models.ErrItemUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := f.svc.CreateOrder(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAutoConfirmation(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := f.svc.Get(ctx, order.ID)
		return err == nil && got.Status == models.StatusConfirmed
	}, 2*time.Second, 10*time.Millisecond)

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DeliveryPerson)
	assert.Equal(t, AssignCourier(order.ID), got.DeliveryPerson)
	assert.Equal(t, 0, f.svc.PendingConfirmations())

	require.Eventually(t, func() bool {
		return len(f.publisher.statuses()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []models.OrderStatus{models.StatusPending, models.StatusConfirmed}, f.publisher.statuses())
}

func TestCancelBeforeConfirmationWins(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, 0, f.svc.PendingConfirmations())

	time.Sleep(80 * time.Millisecond)
	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Nil(t, got.DeliveryPerson)
}

func TestAutoConfirmChecksStatusWhenFiring(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	// cancel behind the scheduler's back
	_, err = f.orders.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusCancelled, nil, "")
	require.NoError(t, err)

	f.svc.autoConfirm(order.ID)
	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	f.svc.autoConfirm("order-missing")
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, order.ID, models.StatusConfirmed, "")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, order.ID, models.StatusPreparing, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = f.svc.UpdateStatus(ctx, order.ID, models.StatusCancelled, "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = f.svc.Cancel(ctx, "order-missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "teleported", "")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.svc.UpdateStatus(ctx, order.ID, models.StatusPreparing, "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	confirmed, err := f.svc.UpdateStatus(ctx, order.ID, models.StatusConfirmed, "confirmed by phone")
	require.NoError(t, err)
	require.NotNil(t, confirmed.DeliveryPerson)
	assert.Equal(t, 0, f.svc.PendingConfirmations())

	for _, next := range []models.OrderStatus{
		models.StatusPreparing,
		models.StatusReadyForPickup,
		models.StatusOutForDelivery,
		models.StatusDelivered,
	} {
		got, err := f.svc.UpdateStatus(ctx, order.ID, next, "")
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	_, err = f.svc.UpdateStatus(ctx, order.ID, models.StatusPending, "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	history, err := f.svc.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 6)
	assert.Equal(t, "confirmed by phone", history[1].Note)

	assert.Len(t, f.publisher.statuses(), 6)
}

func TestTracking(t *testing.T) {
	var now time.Time
	f := newFixture(t, time.Hour, WithNow(func() time.Time { return now }))
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	now = order.CreatedAt.Add(10 * time.Minute)
	view, err := f.svc.Tracking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, view.RemainingMinutes)
	assert.Equal(t, "Pending", view.Label)
	assert.True(t, view.Cancellable)
	require.Len(t, view.Checkpoints, 5)
	assert.True(t, view.Checkpoints[0].Current)

	now = order.CreatedAt.Add(50 * time.Minute)
	view, err = f.svc.Tracking(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.RemainingMinutes)

	_, err = f.svc.Tracking(ctx, "order-missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCartAddItem(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddToCartInput{RestaurantID: "1", MenuItemID: "margherita", Quantity: 1})
	assert.ErrorIs(t, err, models.ErrMissingRequiredOption)
	assert.ErrorContains(t, err, "Size")
	assert.True(t, f.carts.Get(ctx, "s1").IsEmpty())

	res, err := f.carts.AddItem(ctx, "s1", AddToCartInput{
		RestaurantID: "1", MenuItemID: "margherita", Quantity: 1,
		Picks: pricing.Picks{"size": {"medium"}},
	})
	require.NoError(t, err)
	assert.False(t, res.Replaced)
	assert.True(t, decimal.RequireFromString("50.90").Equal(res.Cart.TotalAmount))
	assert.Equal(t, "Pizzaria Bella Napoli", res.Cart.RestaurantName)

	res, err = f.carts.AddItem(ctx, "s1", AddToCartInput{RestaurantID: "1", MenuItemID: "coca-cola", Quantity: 2})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("62.70").Equal(res.Cart.TotalAmount))
	assert.Equal(t, 3, res.Cart.TotalItems)

	res, err = f.carts.AddItem(ctx, "s1", AddToCartInput{RestaurantID: "3", MenuItemID: "temaki-salmon", Quantity: 1})
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	require.Len(t, res.Cart.Items, 1)
	assert.Equal(t, "3", res.Cart.RestaurantID)
}

func TestCartAddItemRejections(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	unavailable := false
	r, err := f.catalog.FindByID(ctx, "4")
	require.NoError(t, err)
	r.Menu[0].Items[0].Available = unavailable
	_, err = f.catalog.Update(ctx, "4", models.RestaurantUpdate{Menu: r.Menu})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   AddToCartInput
		want error
	}{
		{"zero quantity", AddToCartInput{RestaurantID: "1", MenuItemID: "pepperoni"}, models.ErrValidation},
		{"unknown restaurant", AddToCartInput{RestaurantID: "99", MenuItemID: "x", Quantity: 1}, models.ErrNotFound},
		{"unknown item", AddToCartInput{RestaurantID: "1", MenuItemID: "sushi", Quantity: 1}, models.ErrNotFound},
		{"unavailable item", AddToCartInput{RestaurantID: "4", MenuItemID: "beef-tacos", Quantity: 1}, models.ErrItemUnavailable},
		{"two sizes", AddToCartInput{RestaurantID: "1", MenuItemID: "margherita", Quantity: 1,
			Picks: pricing.Picks{"size": {"small", "large"}}}, models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.carts.AddItem(ctx, "s1", tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.True(t, f.carts.Get(ctx, "s1").IsEmpty())
}

func TestCartCheckout(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.carts.Checkout(ctx, "s1", "user1", address(), "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.carts.AddItem(ctx, "s1", AddToCartInput{RestaurantID: "1", MenuItemID: "pepperoni", Quantity: 2})
	require.NoError(t, err)
	line := f.carts.Get(ctx, "s1").Items[0]
	f.carts.UpdateQuantity(ctx, "s1", line.ID, 1)

	_, err = f.carts.Checkout(ctx, "s1", "user1", nil, "")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.False(t, f.carts.Get(ctx, "s1").IsEmpty())

	order, err := f.carts.Checkout(ctx, "s1", "user1", address(), "debit_card")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("48.90").Equal(order.TotalAmount))
	assert.True(t, decimal.RequireFromString("5.99").Equal(order.DeliveryFee))
	assert.Equal(t, line.ID, order.Items[0].ID)
	assert.Equal(t, "debit_card", order.PaymentMethod)
	assert.True(t, f.carts.Get(ctx, "s1").IsEmpty())
}

func TestCartRemoveAndClear(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "s1", AddToCartInput{RestaurantID: "2", MenuItemID: "french-fries", Quantity: 1})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "s1", AddToCartInput{RestaurantID: "2", MenuItemID: "bacon-burger", Quantity: 1})
	require.NoError(t, err)

	first := f.carts.Get(ctx, "s1").Items[0].ID
	s := f.carts.RemoveItem(ctx, "s1", first)
	assert.Len(t, s.Items, 1)
	s = f.carts.Clear(ctx, "s1")
	assert.Equal(t, cart.EmptyState(), s)
}

func TestAssignCourierIsStable(t *testing.T) {
	a := AssignCourier("order-abc")
	b := AssignCourier("order-abc")
	assert.Equal(t, a, b)
	assert.NotSame(t, a, b)
	assert.NotEmpty(t, a.Name)
}

func TestOrderQRCode(t *testing.T) {
	q := NewOrderQRCode("https://food.example.com/")
	assert.Equal(t, "https://food.example.com/pedidos/order-1", q.URL("order-1"))

	png, err := q.PNG("order-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
