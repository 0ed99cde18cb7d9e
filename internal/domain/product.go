package domain

// ProductNutritionRow is one product of a nutrition table.
// Optional numeric fields are nil when the source cell was empty or NaN.
type ProductNutritionRow struct {
	ID                 string   `json:"id,omitempty"`
	Description        string   `json:"description"`
	Price              *float64 `json:"price"`
	Calories           *float64 `json:"calories"`
	ServingsPerPackage *float64 `json:"servings_per_package,omitempty"`
	Size               string   `json:"size,omitempty"`
	ServingSize        string   `json:"serving_size,omitempty"`

	// Extra holds columns the ranking does not look at, keyed by header name.
	Extra map[string]string `json:"extra,omitempty"`
}

// Ratio tiers, in the order they are reported.
const (
	TierBaseline           = "baseline"
	TierServingsPerPackage = "servings_per_package"
	TierUnitConversion     = "unit_conversion"
	TierInvalid            = "invalid"
)

// RankedRow is a row annotated with its calories per dollar.
type RankedRow struct {
	ProductNutritionRow
	CaloriesPerDollar float64 `json:"calories_per_dollar"`
	Tier              string  `json:"tier"`
	// Valid is false when price or calories were unusable; such rows sort last.
	Valid bool `json:"valid"`
}

// Float returns a pointer to v, for building rows by hand.
func Float(v float64) *float64 {
	return &v
}
