// Package repository implements the restaurant catalog and the order store
// on gorm.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"food-ordering-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultDeliveryTime = "30-45 min"

var defaultRestaurantFee = decimal.RequireFromString("5.99")

type RestaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// List returns restaurants matching filter, ordered by id
func (r *RestaurantRepository) List(ctx context.Context, filter models.RestaurantFilter) ([]models.Restaurant, error) {
	query := r.db.WithContext(ctx).Model(&models.Restaurant{})

	if filter.HasCategory() {
		query = query.Where("LOWER(category) = ?", strings.ToLower(filter.Category))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(description) LIKE ?)", like, like, like)
	}
	if filter.OpenOnly {
		query = query.Where("is_open = ?", true)
	}

	restaurants := []models.Restaurant{}
	if err := query.Order("id").Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("restaurant %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find restaurant %s: %w", id, err)
	}
	return &restaurant, nil
}

// Create validates and stores a new restaurant, filling defaults
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	var missing []string
	if strings.TrimSpace(restaurant.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(restaurant.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(restaurant.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", models.ErrValidation, strings.Join(missing, ", "))
	}

	if err := validatePrices(restaurant); err != nil {
		return err
	}

	if restaurant.ID == "" {
		restaurant.ID = "restaurant-" + uuid.NewString()
	}
	if restaurant.DeliveryTime == "" {
		restaurant.DeliveryTime = defaultDeliveryTime
	}
	if restaurant.DeliveryFee.IsZero() {
		restaurant.DeliveryFee = defaultRestaurantFee
	}
	if restaurant.Menu == nil {
		restaurant.Menu = []models.MenuCategory{}
	}

	if err := r.db.WithContext(ctx).Create(restaurant).Error; err != nil {
		return fmt.Errorf("create restaurant: %w", err)
	}
	return nil
}

// Update merges the allowed fields into the stored restaurant
func (r *RestaurantRepository) Update(ctx context.Context, id string, update models.RestaurantUpdate) (*models.Restaurant, error) {
	restaurant, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(restaurant)
	if err := validatePrices(restaurant); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(restaurant).Error; err != nil {
		return nil, fmt.Errorf("update restaurant %s: %w", id, err)
	}
	return restaurant, nil
}

// validatePrices rejects negative fees, item prices and choice surcharges
func validatePrices(restaurant *models.Restaurant) error {
	if restaurant.DeliveryFee.IsNegative() {
		return fmt.Errorf("%w: deliveryFee must not be negative", models.ErrValidation)
	}
	for _, mc := range restaurant.Menu {
		for _, item := range mc.Items {
			if item.Price.IsNegative() {
				return fmt.Errorf("%w: menu item %s has a negative price", models.ErrValidation, item.ID)
			}
			for _, opt := range item.Options {
				for _, ch := range opt.Choices {
					if ch.Price.IsNegative() {
						return fmt.Errorf("%w: choice %s of %s has a negative price", models.ErrValidation, ch.ID, item.ID)
					}
				}
			}
		}
	}
	return nil
}

// Delete removes a restaurant and returns what was removed
func (r *RestaurantRepository) Delete(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Restaurant{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("delete restaurant %s: %w", id, err)
	}
	return restaurant, nil
}

// Seed inserts restaurants only when the table is empty. It returns how many
// rows were written.
func (r *RestaurantRepository) Seed(ctx context.Context, restaurants []models.Restaurant) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	if count > 0 || len(restaurants) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).Create(&restaurants).Error; err != nil {
		return 0, fmt.Errorf("seed restaurants: %w", err)
	}
	return len(restaurants), nil
}
