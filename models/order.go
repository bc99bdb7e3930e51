package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

const DefaultPaymentMethod = "credit_card"

// Order is a frozen snapshot of a submitted cart. Only Status and
// DeliveryPerson change after creation.
type Order struct {
	ID                string               `json:"id" gorm:"primaryKey"`
	UserID            string               `json:"userId" gorm:"index;not null"`
	RestaurantID      string               `json:"restaurantId" gorm:"index;not null"`
	RestaurantName    string               `json:"restaurantName"`
	Items             []CartItem           `json:"items" gorm:"type:text;serializer:json"`
	Status            OrderStatus          `json:"status" gorm:"index;not null"`
	TotalAmount       decimal.Decimal      `json:"totalAmount" gorm:"type:text"`
	DeliveryFee       decimal.Decimal      `json:"deliveryFee" gorm:"type:text"`
	DeliveryAddress   Address              `json:"deliveryAddress" gorm:"type:text;serializer:json"`
	PaymentMethod     string               `json:"paymentMethod"`
	CreatedAt         time.Time            `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	EstimatedDelivery time.Time            `json:"estimatedDelivery"`
	DeliveryPerson    *DeliveryPerson      `json:"deliveryPerson,omitempty" gorm:"type:text;serializer:json"`
	StatusHistory     []OrderStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:OrderID"`
}

// GrandTotal is what the customer pays: items plus delivery
func (o Order) GrandTotal() decimal.Decimal {
	return o.TotalAmount.Add(o.DeliveryFee)
}

// OrderStatusHistory tracks every status change of an order
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"index;not null"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type Address struct {
	Street       string       `json:"street"`
	Number       string       `json:"number"`
	Complement   string       `json:"complement,omitempty"`
	Neighborhood string       `json:"neighborhood"`
	City         string       `json:"city"`
	ZipCode      string       `json:"zipCode"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks the fields a courier needs to find the customer
func (a Address) Validate() error {
	var missing []string
	required := []struct {
		name, value string
	}{
		{"street", a.Street},
		{"number", a.Number},
		{"neighborhood", a.Neighborhood},
		{"city", a.City},
		{"zipCode", a.ZipCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: deliveryAddress is missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

type DeliveryPerson struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Vehicle string  `json:"vehicle"`
	Rating  float64 `json:"rating"`
}

// OrderFilter narrows order listings. Zero values disable a filter.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Limit  int
}
