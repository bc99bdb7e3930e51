package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-ordering-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultDeliveryWindow is added to createdAt to estimate delivery
const DefaultDeliveryWindow = 45 * time.Minute

type OrderRepository struct {
	db     *gorm.DB
	window time.Duration
	now    func() time.Time
}

type OrderOption func(*OrderRepository)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) OrderOption {
	return func(r *OrderRepository) { r.now = now }
}

// WithDeliveryWindow overrides the 45 minute estimate
func WithDeliveryWindow(d time.Duration) OrderOption {
	return func(r *OrderRepository) {
		if d > 0 {
			r.window = d
		}
	}
}

func NewOrderRepository(db *gorm.DB, opts ...OrderOption) *OrderRepository {
	r := &OrderRepository{db: db, window: DefaultDeliveryWindow, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create assigns id, timestamps and the pending status, then stores the
// order together with its first history row.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := r.now().UTC()
	order.ID = "order-" + uuid.NewString()
	order.Status = models.StatusPending
	order.CreatedAt = now
	order.UpdatedAt = now
	order.EstimatedDelivery = now.Add(r.window)
	order.DeliveryPerson = nil
	order.StatusHistory = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			Note:      "Order placed",
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("create order history: %w", err)
		}
		return nil
	})
}

// List returns orders newest first
func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	orders := []models.Order{}
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &order, nil
}

// UpdateStatus moves the order from → to only if it is still in from. A
// non-nil courier is stored alongside. The changed order is returned.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, courier *models.DeliveryPerson, note string) (*models.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.now().UTC()
		cols := []string{"status", "updated_at"}
		values := models.Order{Status: to, UpdatedAt: now}
		if courier != nil {
			cols = append(cols, "delivery_person")
			values.DeliveryPerson = courier
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Select(cols).
			Updates(values)
		if res.Error != nil {
			return fmt.Errorf("update order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			var current models.Order
			err := tx.Select("status").First(&current, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("find order %s: %w", id, err)
			}
			return fmt.Errorf("%w: order %s is %s, not %s", models.ErrInvalidTransition, id, current.Status, from)
		}

		history := models.OrderStatusHistory{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			Note:       note,
			CreatedAt:  now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("create order history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// History returns the status changes of an order, oldest first
func (r *OrderRepository) History(ctx context.Context, id string) ([]models.OrderStatusHistory, error) {
	history := []models.OrderStatusHistory{}
	err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("created_at asc, id asc").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("order %s history: %w", id, err)
	}
	return history, nil
}
