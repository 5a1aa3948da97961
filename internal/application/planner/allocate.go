package planner

import (
	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/pkg/errors"
)

// FilterDislikes drops recipes with an ingredient whose lowercase name contains
// any term. Recipes without ingredients always pass.
func FilterDislikes(recipes []mealplan.Recipe, terms []string) []mealplan.Recipe {
	if len(terms) == 0 {
		return recipes
	}
	kept := make([]mealplan.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if !r.ContainsAny(terms) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Allocate fills every (day, slot) position of the plan. All slots are checked
// for candidates before anything is assigned, so a slot without recipes fails
// the whole plan.
func Allocate(plan *mealplan.MealPlan, recipes []mealplan.Recipe, slots []mealplan.MealSlot, servings int, selector Selector) error {
	candidates := make(map[mealplan.MealSlot][]mealplan.Recipe, len(slots))
	for _, slot := range slots {
		for _, r := range recipes {
			if r.Serves(slot) {
				candidates[slot] = append(candidates[slot], r)
			}
		}
		if len(candidates[slot]) == 0 {
			return errors.NewNoRecipesForSlotError(string(slot))
		}
	}

	for day := 0; day < plan.Days(); day++ {
		date := plan.DateOf(day)
		for _, slot := range slots {
			recipe := selector(candidates[slot], date, slot)
			if err := plan.Assign(day, slot, recipe, servings); err != nil {
				return errors.Wrap(err, "assign recipe")
			}
		}
	}

	if err := plan.EnsureComplete(slots); err != nil {
		return errors.Wrap(err, "incomplete plan")
	}
	return nil
}
