package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType controls how many choices of a MenuOption may be picked
type OptionType string

const (
	OptionSingle   OptionType = "single"
	OptionMultiple OptionType = "multiple"
)

type Restaurant struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"not null"`
	Image        string          `json:"image"`
	Rating       float64         `json:"rating"`
	DeliveryTime string          `json:"deliveryTime"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee" gorm:"type:text"`
	Category     string          `json:"category" gorm:"index"`
	Description  string          `json:"description"`
	IsOpen       bool            `json:"isOpen"`
	Menu         []MenuCategory  `json:"menu" gorm:"type:text;serializer:json"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// FindMenuItem looks an item up across every menu category
func (r *Restaurant) FindMenuItem(itemID string) (*MenuItem, bool) {
	for i := range r.Menu {
		for j := range r.Menu[i].Items {
			if r.Menu[i].Items[j].ID == itemID {
				return &r.Menu[i].Items[j], true
			}
		}
	}
	return nil, false
}

type MenuCategory struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// MenuItem is catalog reference data. Options is never nil once loaded from
// the catalog: an empty slice means the item has no customization.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
	Options     []MenuOption    `json:"options"`
}

type MenuOption struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Type     OptionType   `json:"type"`
	Required bool         `json:"required"`
	Choices  []MenuChoice `json:"choices"`
}

// FindChoice returns the choice with the given id
func (o MenuOption) FindChoice(choiceID string) (MenuChoice, bool) {
	for _, ch := range o.Choices {
		if ch.ID == choiceID {
			return ch, true
		}
	}
	return MenuChoice{}, false
}

type MenuChoice struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// RestaurantFilter narrows catalog listings. Zero values disable a filter.
type RestaurantFilter struct {
	Category string
	Search   string
	OpenOnly bool
}

// HasCategory reports whether the category filter is active. "all" (any case)
// is treated as no filter.
func (f RestaurantFilter) HasCategory() bool {
	return f.Category != "" && !strings.EqualFold(f.Category, "all")
}

// RestaurantUpdate carries a partial update; nil fields are left untouched.
type RestaurantUpdate struct {
	Name         *string          `json:"name"`
	Image        *string          `json:"image"`
	Rating       *float64         `json:"rating"`
	DeliveryTime *string          `json:"deliveryTime"`
	DeliveryFee  *decimal.Decimal `json:"deliveryFee"`
	Category     *string          `json:"category"`
	Description  *string          `json:"description"`
	IsOpen       *bool            `json:"isOpen"`
	Menu         []MenuCategory   `json:"menu"`
}

// Apply merges the update into r. The id is never changed.
func (u RestaurantUpdate) Apply(r *Restaurant) {
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.Image != nil {
		r.Image = *u.Image
	}
	if u.Rating != nil {
		r.Rating = *u.Rating
	}
	if u.DeliveryTime != nil {
		r.DeliveryTime = *u.DeliveryTime
	}
	if u.DeliveryFee != nil {
		r.DeliveryFee = *u.DeliveryFee
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.IsOpen != nil {
		r.IsOpen = *u.IsOpen
	}
	if u.Menu != nil {
		r.Menu = u.Menu
	}
}
