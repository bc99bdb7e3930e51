package service

import (
	"context"

	"food-ordering-api/models"
)

// OrderStore persists orders. UpdateStatus only applies when the stored
// status still equals from.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, courier *models.DeliveryPerson, note string) (*models.Order, error)
	History(ctx context.Context, id string) ([]models.OrderStatusHistory, error)
}

type RestaurantCatalog interface {
	List(ctx context.Context, filter models.RestaurantFilter) ([]models.Restaurant, error)
	FindByID(ctx context.Context, id string) (*models.Restaurant, error)
	Create(ctx context.Context, restaurant *models.Restaurant) error
	Update(ctx context.Context, id string, update models.RestaurantUpdate) (*models.Restaurant, error)
	Delete(ctx context.Context, id string) (*models.Restaurant, error)
}
