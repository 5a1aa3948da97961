// Package mealplan contains the core domain model for multi-day meal planning.
package mealplan

import (
	"strings"

	"github.com/google/uuid"
)

// MealSlot is one of the three daily meal positions a recipe can fill
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
)

// ParseMealSlot parses a case-insensitive slot name
func ParseMealSlot(s string) (MealSlot, error) {
	switch slot := MealSlot(strings.ToLower(strings.TrimSpace(s))); slot {
	case SlotBreakfast, SlotLunch, SlotDinner:
		return slot, nil
	default:
		return "", ErrUnknownMealSlot
	}
}

// SlotsForMealsPerDay maps a meals-per-day count onto the slots to fill, in serving order
func SlotsForMealsPerDay(mealsPerDay int) ([]MealSlot, error) {
	switch mealsPerDay {
	case 1:
		return []MealSlot{SlotDinner}, nil
	case 2:
		return []MealSlot{SlotLunch, SlotDinner}, nil
	case 3:
		return []MealSlot{SlotBreakfast, SlotLunch, SlotDinner}, nil
	default:
		return nil, ErrInvalidMealsPerDay
	}
}

// DietaryFlags are the hard dietary restrictions applied by the catalog query
type DietaryFlags struct {
	Vegetarian bool
	DairyFree  bool
}

// RecipeIngredient is one ingredient line of a recipe with its resolved ingredient data
type RecipeIngredient struct {
	IngredientID uuid.UUID
	Name         string
	Category     string
	Quantity     float64
	Unit         string
}

// Recipe is catalog reference data. It is never mutated during planning.
type Recipe struct {
	ID           uuid.UUID
	Title        string
	MealSlots    []MealSlot
	Servings     int
	PrepMinutes  *int
	CookMinutes  *int
	TotalMinutes *int
	Vegetarian   bool
	DairyFree    bool
	Ingredients  []RecipeIngredient
}

// Serves reports whether the recipe declares the given slot
func (r Recipe) Serves(slot MealSlot) bool {
	for _, s := range r.MealSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// TotalTime returns the total minutes, falling back to prep + cook.
// The boolean is false when no timing is known at all.
func (r Recipe) TotalTime() (int, bool) {
	if r.TotalMinutes != nil {
		return *r.TotalMinutes, true
	}
	if r.PrepMinutes == nil && r.CookMinutes == nil {
		return 0, false
	}
	total := 0
	if r.PrepMinutes != nil {
		total += *r.PrepMinutes
	}
	if r.CookMinutes != nil {
		total += *r.CookMinutes
	}
	return total, true
}

// ContainsAny reports whether any ingredient name contains one of the lowercase terms
func (r Recipe) ContainsAny(terms []string) bool {
	for _, ing := range r.Ingredients {
		name := strings.ToLower(ing.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				return true
			}
		}
	}
	return false
}

// ParseDislikes splits a free-text, comma-separated dislike string into
// lowercase trimmed terms. Empty terms are dropped.
func ParseDislikes(raw string) []string {
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
