// Package shopping contains shopping list entities, unit normalization and
// price reference data.
package shopping

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canonical units every known measurement is normalized into
const (
	UnitGrams       = "g"
	UnitMilliliters = "ml"
	UnitPieces      = "pcs"
)

// ErrUnknownUnit is returned for units outside the conversion table
var ErrUnknownUnit = errors.New("unknown measurement unit")

type conversion struct {
	multiplier float64
	canonical  string
}

var conversions = map[string]conversion{
	// weight
	"g":  {1, UnitGrams},
	"kg": {1000, UnitGrams},
	"oz": {28.3495, UnitGrams},
	"lb": {453.592, UnitGrams},

	// volume
	"ml":    {1, UnitMilliliters},
	"l":     {1000, UnitMilliliters},
	"tsp":   {4.92892, UnitMilliliters},
	"tbsp":  {14.7868, UnitMilliliters},
	"cup":   {236.588, UnitMilliliters},
	"fl oz": {29.5735, UnitMilliliters},

	// count
	"pcs":    {1, UnitPieces},
	"piece":  {1, UnitPieces},
	"pieces": {1, UnitPieces},
	"count":  {1, UnitPieces},
	"whole":  {1, UnitPieces},
}

func unitKey(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// IsKnownUnit reports whether the unit is in the conversion table
func IsKnownUnit(unit string) bool {
	_, ok := conversions[unitKey(unit)]
	return ok
}

// ConvertToNormalizedUnit converts a quantity into its canonical unit (g, ml or pcs).
// Unknown units are an error.
func ConvertToNormalizedUnit(quantity float64, unit string) (float64, string, error) {
	c, ok := conversions[unitKey(unit)]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return quantity * c.multiplier, c.canonical, nil
}

// RoundQuantity rounds to one decimal place
func RoundQuantity(quantity float64) float64 {
	return math.Round(quantity*10) / 10
}

// FormatQuantity renders a quantity for display. Pieces render as whole numbers,
// grams and milliliters switch to kg and L from 1000 upward.
func FormatQuantity(quantity float64, unit string) string {
	rounded := RoundQuantity(quantity)

	switch unitKey(unit) {
	case UnitPieces:
		return fmt.Sprintf("%d pcs", int64(math.Round(quantity)))
	case UnitGrams:
		if rounded >= 1000 {
			return fmt.Sprintf("%.1fkg", rounded/1000)
		}
		return formatDecimal(rounded) + "g"
	case UnitMilliliters:
		if rounded >= 1000 {
			return fmt.Sprintf("%.1fL", rounded/1000)
		}
		return formatDecimal(rounded) + "ml"
	case "":
		return formatDecimal(rounded)
	default:
		return formatDecimal(rounded) + " " + strings.TrimSpace(unit)
	}
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
