// Package pricing computes cart line prices and resolves option selections
// against catalog items.
package pricing

import (
	"fmt"
	"strings"

	"food-ordering-api/models"

	"github.com/shopspring/decimal"
)

// ComputeLinePrice returns (item.Price + sum of surcharges) * quantity.
// It never rounds; callers clamp quantity to >= 1 beforehand.
func ComputeLinePrice(item models.MenuItem, selected []models.SelectedOption, quantity int) decimal.Decimal {
	return UnitPrice(item, selected).Mul(decimal.NewFromInt(int64(quantity)))
}

// UnitPrice is the price of a single unit including option surcharges
func UnitPrice(item models.MenuItem, selected []models.SelectedOption) decimal.Decimal {
	unit := item.Price
	for _, opt := range selected {
		unit = unit.Add(opt.Price)
	}
	return unit
}

// Picks maps an option id to the choice ids picked for it
type Picks map[string][]string

// ResolveSelection turns raw picks into SelectedOptions ordered by option
// declaration, and by choice declaration within an option.
func ResolveSelection(item models.MenuItem, picks Picks) ([]models.SelectedOption, error) {
	if !item.Available {
		return nil, fmt.Errorf("%w: %s is not available right now", models.ErrItemUnavailable, item.Name)
	}

	declared := make(map[string]bool, len(item.Options))
	for _, opt := range item.Options {
		declared[opt.ID] = true
	}
	for optionID := range picks {
		if !declared[optionID] {
			return nil, fmt.Errorf("%w: unknown option %q for %s", models.ErrValidation, optionID, item.Name)
		}
	}

	selected := make([]models.SelectedOption, 0, len(picks))
	var missing []string
	for _, opt := range item.Options {
		chosen := picks[opt.ID]
		if len(chosen) == 0 {
			if opt.Required {
				missing = append(missing, opt.Name)
			}
			continue
		}
		if opt.Type == models.OptionSingle && len(chosen) > 1 {
			return nil, fmt.Errorf("%w: option %q accepts exactly one choice", models.ErrValidation, opt.Name)
		}

		wanted := make(map[string]bool, len(chosen))
		for _, id := range chosen {
			if _, ok := opt.FindChoice(id); !ok {
				return nil, fmt.Errorf("%w: unknown choice %q for option %q", models.ErrValidation, id, opt.Name)
			}
			wanted[id] = true
		}
		for _, ch := range opt.Choices {
			if !wanted[ch.ID] {
				continue
			}
			selected = append(selected, models.SelectedOption{
				OptionID:   opt.ID,
				OptionName: opt.Name,
				ChoiceID:   ch.ID,
				ChoiceName: ch.Name,
				Price:      ch.Price,
			})
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: please select %s", models.ErrMissingRequiredOption, strings.Join(missing, ", "))
	}
	return selected, nil
}
