package shoppinglist

import (
	"sort"
	"strings"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/google/uuid"
)

// Line is one scaled ingredient quantity taken from a planned recipe
type Line struct {
	IngredientID uuid.UUID
	Name         string
	Category     string
	Quantity     float64
	Unit         string
}

// Mismatch names an ingredient whose quantities fall into incompatible unit classes
type Mismatch struct {
	IngredientID uuid.UUID
	Name         string
	Units        []string
}

type accumulator struct {
	name     string
	category string
	quantity float64
	unit     string
}

// ScaleLines expands plan items into ingredient lines, scaling each recipe by
// item servings over recipe servings. Items without a loaded recipe are skipped.
func ScaleLines(items []mealplan.MealPlanItem) []Line {
	var lines []Line
	for _, item := range items {
		if item.Recipe == nil {
			continue
		}
		base := item.Recipe.Servings
		if base <= 0 {
			base = 1
		}
		scale := float64(item.Servings) / float64(base)
		for _, ing := range item.Recipe.Ingredients {
			lines = append(lines, Line{
				IngredientID: ing.IngredientID,
				Name:         ing.Name,
				Category:     ing.Category,
				Quantity:     ing.Quantity * scale,
				Unit:         ing.Unit,
			})
		}
	}
	return lines
}

// Aggregate merges lines per ingredient. Quantities in a known unit are
// converted to the canonical unit of their class on insertion, so merging is a
// plain sum and the result does not depend on input order. Unknown units form
// their own class keyed by the unit string. An ingredient that ends up in more
// than one class keeps one item per class and is reported as a mismatch.
func Aggregate(lines []Line) ([]shopping.Item, []Mismatch) {
	arena := make(map[uuid.UUID]map[string]*accumulator)

	for _, line := range lines {
		quantity, unit, err := shopping.ConvertToNormalizedUnit(line.Quantity, line.Unit)
		if err != nil {
			quantity, unit = line.Quantity, strings.ToLower(strings.TrimSpace(line.Unit))
		}

		classes, ok := arena[line.IngredientID]
		if !ok {
			classes = make(map[string]*accumulator)
			arena[line.IngredientID] = classes
		}
		acc, ok := classes[unit]
		if !ok {
			acc = &accumulator{name: line.Name, category: line.Category, unit: unit}
			classes[unit] = acc
		}
		acc.quantity += quantity
	}

	var (
		items      []shopping.Item
		mismatches []Mismatch
	)
	for ingredientID, classes := range arena {
		id := ingredientID
		var units []string
		var name string
		for _, acc := range classes {
			items = append(items, shopping.Item{
				IngredientID: &id,
				Name:         acc.name,
				Quantity:     acc.quantity,
				Unit:         acc.unit,
				Category:     acc.category,
			})
			units = append(units, acc.unit)
			name = acc.name
		}
		if len(classes) > 1 {
			sort.Strings(units)
			mismatches = append(mismatches, Mismatch{IngredientID: id, Name: name, Units: units})
		}
	}

	SortItems(items)
	sort.Slice(mismatches, func(i, j int) bool {
		return mismatches[i].IngredientID.String() < mismatches[j].IngredientID.String()
	})
	return items, mismatches
}

// SortItems orders items by category, name, then unit
func SortItems(items []shopping.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if ca, cb := a.ResolvedCategory(), b.ResolvedCategory(); ca != cb {
			return ca < cb
		}
		if na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name); na != nb {
			return na < nb
		}
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		return a.IngredientID != nil && b.IngredientID != nil && a.IngredientID.String() < b.IngredientID.String()
	})
}
