// Package units turns free-text package and serving sizes ("16 oz",
// "1 cup (240 mL)", "1 1/2 lbs") into typed quantities and converts them
// within a measurement dimension.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// Dimension is the physical kind a unit measures.
type Dimension string

const (
	Mass   Dimension = "mass"
	Volume Dimension = "volume"
	Count  Dimension = "count"
)

var (
	// ErrNoQuantity is returned when the text has no leading number
	ErrNoQuantity = errors.New("no numeric quantity")

	// ErrUnknownUnit is returned when the token after the number is not a known unit
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrIncompatibleUnits is returned when converting across dimensions
	ErrIncompatibleUnits = errors.New("incompatible units")

	// ErrZeroQuantity is returned when dividing by an empty quantity
	ErrZeroQuantity = errors.New("zero quantity")
)

// Unit is a unit of measure with its factor to the dimension's base unit
// (gram, millilitre, item).
type Unit struct {
	Symbol    string
	Dimension Dimension
	ToBase    float64
}

func (u Unit) String() string {
	return u.Symbol
}

var (
	Gram       = Unit{Symbol: "g", Dimension: Mass, ToBase: 1}
	Milligram  = Unit{Symbol: "mg", Dimension: Mass, ToBase: 0.001}
	Kilogram   = Unit{Symbol: "kg", Dimension: Mass, ToBase: 1000}
	Ounce      = Unit{Symbol: "oz", Dimension: Mass, ToBase: 28.349523125}
	Pound      = Unit{Symbol: "lb", Dimension: Mass, ToBase: 453.59237}
	Milliliter = Unit{Symbol: "ml", Dimension: Volume, ToBase: 1}
	Liter      = Unit{Symbol: "l", Dimension: Volume, ToBase: 1000}
	FluidOunce = Unit{Symbol: "fl oz", Dimension: Volume, ToBase: 29.5735295625}
	Cup        = Unit{Symbol: "cup", Dimension: Volume, ToBase: 236.5882365}
	Tablespoon = Unit{Symbol: "tbsp", Dimension: Volume, ToBase: 14.78676478125}
	Teaspoon   = Unit{Symbol: "tsp", Dimension: Volume, ToBase: 4.92892159375}
	Pint       = Unit{Symbol: "pt", Dimension: Volume, ToBase: 473.176473}
	Quart      = Unit{Symbol: "qt", Dimension: Volume, ToBase: 946.352946}
	Gallon     = Unit{Symbol: "gal", Dimension: Volume, ToBase: 3785.411784}
	Each       = Unit{Symbol: "ct", Dimension: Count, ToBase: 1}
	Dozen      = Unit{Symbol: "dozen", Dimension: Count, ToBase: 12}
)

// aliases maps every accepted spelling (lowercase, dots removed) to its unit.
// Bare "oz" is weight; only "fl oz" and its spellings are volume.
var aliases = map[string]Unit{
	"g": Gram, "gr": Gram, "gram": Gram, "grams": Gram,
	"mg": Milligram, "milligram": Milligram, "milligrams": Milligram,
	"kg": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"oz": Ounce, "ounce": Ounce, "ounces": Ounce, "wt oz": Ounce, "net wt oz": Ounce,
	"lb": Pound, "lbs": Pound, "pound": Pound, "pounds": Pound,

	"ml": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "millilitres": Milliliter,
	"l": Liter, "lt": Liter, "liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"fl oz": FluidOunce, "floz": FluidOunce, "fl ounce": FluidOunce, "fl ounces": FluidOunce,
	"fluid ounce": FluidOunce, "fluid ounces": FluidOunce,
	"cup": Cup, "cups": Cup, "c": Cup,
	"tbsp": Tablespoon, "tbs": Tablespoon, "tablespoon": Tablespoon, "tablespoons": Tablespoon,
	"tsp": Teaspoon, "teaspoon": Teaspoon, "teaspoons": Teaspoon,
	"pt": Pint, "pint": Pint, "pints": Pint,
	"qt": Quart, "quart": Quart, "quarts": Quart,
	"gal": Gallon, "gallon": Gallon, "gallons": Gallon,

	"ct": Each, "count": Each, "each": Each, "ea": Each,
	"pc": Each, "pcs": Each, "piece": Each, "pieces": Each,
	"pk": Each, "pack": Each,
	"dozen": Dozen, "dz": Dozen,
}

// maxUnitWords bounds how many words a unit spelling may span ("net wt oz").
const maxUnitWords = 3

// Lookup resolves a unit spelling such as "Fl. Oz" or "lbs".
func Lookup(name string) (Unit, error) {
	key := strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(name, ".", " "))), " ")
	if u, ok := aliases[key]; ok {
		return u, nil
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// Compatible reports whether values in a can be expressed in b.
func Compatible(a, b Unit) bool {
	return a.Dimension == b.Dimension
}
