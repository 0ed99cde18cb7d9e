package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// mixed fraction | fraction | decimal | integer, first match wins
	numberPattern = regexp.MustCompile(`(\d+\s+\d+/\d+|\d+/\d+|\d*\.\d+|\d+)`)

	// letters, dots and spaces directly after the number: "fl. oz. bottle"
	unitPattern = regexp.MustCompile(`^[\s-]*([A-Za-z][A-Za-z. ]*)`)
)

// Quantity is a magnitude tagged with its unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'f', -1, 64) + " " + q.Unit.Symbol
}

// Parse extracts the first quantity of text together with the unit that follows it.
// The unit is the longest run of leading words that names a known unit, so
// "64 fl oz bottle" is 64 fl oz and "1 cup (240 mL)" is 1 cup.
func Parse(text string) (Quantity, error) {
	loc := numberPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Quantity{}, fmt.Errorf("%w in %q", ErrNoQuantity, text)
	}

	value, err := parseNumber(text[loc[2]:loc[3]])
	if err != nil {
		return Quantity{}, fmt.Errorf("%w in %q", ErrNoQuantity, text)
	}

	m := unitPattern.FindStringSubmatch(text[loc[1]:])
	if m == nil {
		return Quantity{}, fmt.Errorf("%w: nothing after number in %q", ErrUnknownUnit, text)
	}

	words := strings.Fields(strings.ReplaceAll(m[1], ".", " "))
	if len(words) > maxUnitWords {
		words = words[:maxUnitWords]
	}
	for n := len(words); n > 0; n-- {
		if u, err := Lookup(strings.Join(words[:n], " ")); err == nil {
			return Quantity{Value: value, Unit: u}, nil
		}
	}

	return Quantity{}, fmt.Errorf("%w: %q", ErrUnknownUnit, strings.TrimSpace(m[1]))
}

// parseNumber handles "2", "2.5", ".5", "1/2" and "1 1/2".
func parseNumber(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 2 {
		whole, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, err
		}
		frac, err := parseNumber(fields[1])
		if err != nil {
			return 0, err
		}
		return whole + frac, nil
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, ErrZeroQuantity
		}
		return n / d, nil
	}

	return strconv.ParseFloat(s, 64)
}

// ConvertTo expresses q in unit u.
func (q Quantity) ConvertTo(u Unit) (Quantity, error) {
	if !Compatible(q.Unit, u) {
		return Quantity{}, fmt.Errorf("%w: %s (%s) to %s (%s)",
			ErrIncompatibleUnits, q.Unit.Symbol, q.Unit.Dimension, u.Symbol, u.Dimension)
	}
	if q.Unit == u {
		return q, nil
	}
	return Quantity{Value: q.Value * q.Unit.ToBase / u.ToBase, Unit: u}, nil
}

// Ratio returns how many times part fits into whole, converting part into whole's unit first.
func Ratio(whole, part Quantity) (float64, error) {
	converted, err := part.ConvertTo(whole.Unit)
	if err != nil {
		return 0, err
	}
	if converted.Value == 0 {
		return 0, ErrZeroQuantity
	}
	return whole.Value / converted.Value, nil
}
