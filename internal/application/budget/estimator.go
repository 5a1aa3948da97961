// Package budget prices shopping lists against store price baselines
package budget

import (
	"math"
	"strings"

	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
)

// Confidence labels
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// mediumMissingRatio is the largest share of unpriced items still rated medium
const mediumMissingRatio = 0.25

type normalizedBaseline struct {
	category string
	unit     string
	price    float64
}

// Estimate computes cheap, standard and premium totals. For each item the
// baselines of the same category and canonical unit give the min, mean and
// max price; items without any such baseline are left out and counted as
// missing.
func Estimate(items []shopping.Item, baselines []shopping.PriceBaseline) inbound.BudgetEstimateDTO {
	normalized := normalizeBaselines(baselines)

	var totals inbound.BudgetTotals
	missing := 0
	for _, item := range items {
		category := strings.ToLower(item.ResolvedCategory())
		unit := strings.ToLower(strings.TrimSpace(item.Unit))

		low, high, sum, n := math.Inf(1), math.Inf(-1), 0.0, 0
		for _, b := range normalized {
			if b.category != category || b.unit != unit {
				continue
			}
			low = math.Min(low, b.price)
			high = math.Max(high, b.price)
			sum += b.price
			n++
		}
		if n == 0 {
			missing++
			continue
		}

		totals.Cheap += low * item.Quantity
		totals.Standard += sum / float64(n) * item.Quantity
		totals.Premium += high * item.Quantity
	}

	totals.Cheap = roundCents(totals.Cheap)
	totals.Standard = roundCents(totals.Standard)
	totals.Premium = roundCents(totals.Premium)

	return inbound.BudgetEstimateDTO{
		Totals:           &totals,
		MissingItemCount: &missing,
		Confidence:       confidenceFor(missing, len(items)),
	}
}

// Locked is the placeholder returned to callers without budget access
func Locked() inbound.BudgetEstimateDTO {
	return inbound.BudgetEstimateDTO{Locked: true}
}

// normalizeBaselines expresses every baseline per canonical unit, so a price
// per kilogram becomes a price per gram. Unknown units are kept as written.
func normalizeBaselines(baselines []shopping.PriceBaseline) []normalizedBaseline {
	out := make([]normalizedBaseline, 0, len(baselines))
	for _, b := range baselines {
		nb := normalizedBaseline{
			category: strings.ToLower(strings.TrimSpace(b.Category)),
			unit:     strings.ToLower(strings.TrimSpace(b.Unit)),
			price:    b.PricePerUnit,
		}
		if multiplier, unit, err := shopping.ConvertToNormalizedUnit(1, b.Unit); err == nil && multiplier > 0 {
			nb.unit = unit
			nb.price = b.PricePerUnit / multiplier
		}
		out = append(out, nb)
	}
	return out
}

func confidenceFor(missing, total int) string {
	switch {
	case missing == 0:
		return ConfidenceHigh
	case float64(missing) <= mediumMissingRatio*float64(total):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
