package kroger

import (
	"strconv"
	"strings"

	"github.com/caloriecart/backend/internal/domain"
)

// Nutrient identifiers on the catalog's nutrition panel
const (
	NutrientCodeEnergy = "ENER-"
	NutrientNameEnergy = "calories"
)

// MapToRow converts a catalog product into a nutrition row.
// ok is false when the product has no regular price or no calorie count.
func MapToRow(p *domain.Product) (row domain.ProductNutritionRow, ok bool) {
	if p == nil {
		return row, false
	}

	row = domain.ProductNutritionRow{
		ID:          p.ProductID,
		Description: p.Description,
		Extra:       map[string]string{},
	}
	if p.Brand != "" {
		row.Extra["brand"] = p.Brand
	}
	if len(p.Categories) > 0 {
		row.Extra["categories"] = strings.Join(p.Categories, "; ")
	}

	item, hasItem := pricedItem(p.Items)
	if hasItem {
		row.Price = domain.Float(item.Price.Regular)
		if item.Price.Promo > 0 {
			row.Extra["promo_price"] = strconv.FormatFloat(item.Price.Promo, 'f', -1, 64)
		}
		row.Size = item.Size
		if item.UPC != "" {
			row.Extra["upc"] = item.UPC
		}
	} else if len(p.Items) > 0 {
		row.Size = p.Items[0].Size
	}

	if len(p.NutritionInformation) == 0 {
		return row, false
	}
	info := p.NutritionInformation[0]

	calories, found := FindCalories(info.Nutrients)
	if found {
		row.Calories = domain.Float(calories)
	}
	if info.ServingsPerPackage.Value > 0 {
		row.ServingsPerPackage = domain.Float(info.ServingsPerPackage.Value)
	}
	row.ServingSize = FormatServingSize(info.ServingSize)

	return row, hasItem && found
}

// FindCalories returns the energy value of a nutrition panel.
func FindCalories(nutrients []domain.Nutrient) (float64, bool) {
	for _, n := range nutrients {
		if n.Code == NutrientCodeEnergy || strings.EqualFold(strings.TrimSpace(n.DisplayName), NutrientNameEnergy) {
			return n.Quantity, true
		}
	}
	return 0, false
}

// FormatServingSize renders a serving size as "<quantity> <unit>", or "" when unknown.
func FormatServingSize(s domain.ServingSize) string {
	if s.Quantity <= 0 {
		return ""
	}
	unit := s.UnitOfMeasure.Abbreviation
	if unit == "" {
		unit = s.UnitOfMeasure.Name
	}
	return strings.TrimSpace(strconv.FormatFloat(s.Quantity, 'f', -1, 64) + " " + unit)
}

func pricedItem(items []domain.ProductItem) (domain.ProductItem, bool) {
	for _, it := range items {
		if it.Price != nil && it.Price.Regular > 0 {
			return it, true
		}
	}
	return domain.ProductItem{}, false
}
