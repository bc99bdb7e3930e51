package repository

import (
	_ "embed"
	"fmt"

	"food-ordering-api/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type seedFile struct {
	Restaurants []seedRestaurant `yaml:"restaurants"`
}

type seedRestaurant struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Image        string         `yaml:"image"`
	Rating       float64        `yaml:"rating"`
	DeliveryTime string         `yaml:"deliveryTime"`
	DeliveryFee  string         `yaml:"deliveryFee"`
	Category     string         `yaml:"category"`
	Description  string         `yaml:"description"`
	IsOpen       bool           `yaml:"isOpen"`
	Menu         []seedCategory `yaml:"menu"`
}

type seedCategory struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Price       string       `yaml:"price"`
	Image       string       `yaml:"image"`
	Category    string       `yaml:"category"`
	Available   bool         `yaml:"available"`
	Options     []seedOption `yaml:"options"`
}

type seedOption struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Type     string       `yaml:"type"`
	Required bool         `yaml:"required"`
	Choices  []seedChoice `yaml:"choices"`
}

type seedChoice struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

// DefaultCatalog parses the bundled restaurant fixtures
func DefaultCatalog() ([]models.Restaurant, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes a YAML catalog document. Prices are decimal strings.
func ParseCatalog(data []byte) ([]models.Restaurant, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	out := make([]models.Restaurant, 0, len(f.Restaurants))
	for _, sr := range f.Restaurants {
		r, err := sr.toModel()
		if err != nil {
			return nil, fmt.Errorf("restaurant %s: %w", sr.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (sr seedRestaurant) toModel() (models.Restaurant, error) {
	fee, err := parseMoney(sr.DeliveryFee)
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("deliveryFee: %w", err)
	}
	r := models.Restaurant{
		ID:           sr.ID,
		Name:         sr.Name,
		Image:        sr.Image,
		Rating:       sr.Rating,
		DeliveryTime: sr.DeliveryTime,
		DeliveryFee:  fee,
		Category:     sr.Category,
		Description:  sr.Description,
		IsOpen:       sr.IsOpen,
		Menu:         make([]models.MenuCategory, 0, len(sr.Menu)),
	}
	for _, sc := range sr.Menu {
		cat := models.MenuCategory{ID: sc.ID, Name: sc.Name, Items: make([]models.MenuItem, 0, len(sc.Items))}
		for _, si := range sc.Items {
			item, err := si.toModel()
			if err != nil {
				return models.Restaurant{}, fmt.Errorf("item %s: %w", si.ID, err)
			}
			cat.Items = append(cat.Items, item)
		}
		r.Menu = append(r.Menu, cat)
	}
	return r, nil
}

func (si seedItem) toModel() (models.MenuItem, error) {
	price, err := parseMoney(si.Price)
	if err != nil {
		return models.MenuItem{}, err
	}
	item := models.MenuItem{
		ID:          si.ID,
		Name:        si.Name,
		Description: si.Description,
		Price:       price,
		Image:       si.Image,
		Category:    si.Category,
		Available:   si.Available,
		Options:     make([]models.MenuOption, 0, len(si.Options)),
	}
	for _, so := range si.Options {
		typ := models.OptionType(so.Type)
		if typ != models.OptionSingle && typ != models.OptionMultiple {
			return models.MenuItem{}, fmt.Errorf("option %s: unknown type %q", so.ID, so.Type)
		}
		opt := models.MenuOption{
			ID:       so.ID,
			Name:     so.Name,
			Type:     typ,
			Required: so.Required,
			Choices:  make([]models.MenuChoice, 0, len(so.Choices)),
		}
		for _, sc := range so.Choices {
			p, err := parseMoney(sc.Price)
			if err != nil {
				return models.MenuItem{}, fmt.Errorf("choice %s: %w", sc.ID, err)
			}
			opt.Choices = append(opt.Choices, models.MenuChoice{ID: sc.ID, Name: sc.Name, Price: p})
		}
		item.Options = append(item.Options, opt)
	}
	return item, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", s)
	}
	return d, nil
}
