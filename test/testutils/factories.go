// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	recipe mealplan.Recipe
}

// NewRecipeBuilder creates a dinner recipe with a random title and no timing
func NewRecipeBuilder() *RecipeBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &RecipeBuilder{
		recipe: mealplan.Recipe{
			ID:        uuid.New(),
			Title:     faker.Dinner(),
			MealSlots: []mealplan.MealSlot{mealplan.SlotDinner},
			Servings:  2,
		},
	}
}

// WithTitle sets the recipe title
func (b *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	b.recipe.Title = title
	return b
}

// WithSlots replaces the meal slots
func (b *RecipeBuilder) WithSlots(slots ...mealplan.MealSlot) *RecipeBuilder {
	b.recipe.MealSlots = slots
	return b
}

// AllSlots makes the recipe eligible for breakfast, lunch and dinner
func (b *RecipeBuilder) AllSlots() *RecipeBuilder {
	return b.WithSlots(mealplan.SlotBreakfast, mealplan.SlotLunch, mealplan.SlotDinner)
}

// WithTotalMinutes sets the explicit total time
func (b *RecipeBuilder) WithTotalMinutes(minutes int) *RecipeBuilder {
	b.recipe.TotalMinutes = Ptr(minutes)
	return b
}

// WithPrepCook sets prep and cook minutes
func (b *RecipeBuilder) WithPrepCook(prep, cook int) *RecipeBuilder {
	b.recipe.PrepMinutes = Ptr(prep)
	b.recipe.CookMinutes = Ptr(cook)
	return b
}

// Vegetarian flags the recipe vegetarian
func (b *RecipeBuilder) Vegetarian() *RecipeBuilder {
	b.recipe.Vegetarian = true
	return b
}

// DairyFree flags the recipe dairy-free
func (b *RecipeBuilder) DairyFree() *RecipeBuilder {
	b.recipe.DairyFree = true
	return b
}

// WithIngredient appends an ingredient line
func (b *RecipeBuilder) WithIngredient(ing mealplan.RecipeIngredient) *RecipeBuilder {
	b.recipe.Ingredients = append(b.recipe.Ingredients, ing)
	return b
}

// Build returns the built recipe
func (b *RecipeBuilder) Build() mealplan.Recipe {
	return b.recipe
}

// IngredientFactory hands out stable ingredient identities by name
type IngredientFactory struct {
	ids map[string]uuid.UUID
}

// NewIngredientFactory creates an ingredient factory
func NewIngredientFactory() *IngredientFactory {
	return &IngredientFactory{ids: make(map[string]uuid.UUID)}
}

// Line creates an ingredient line. The same name always maps to the same ingredient.
func (f *IngredientFactory) Line(name, category string, quantity float64, unit string) mealplan.RecipeIngredient {
	id, ok := f.ids[name]
	if !ok {
		id = uuid.New()
		f.ids[name] = id
	}
	return mealplan.RecipeIngredient{
		IngredientID: id,
		Name:         name,
		Category:     category,
		Quantity:     quantity,
		Unit:         unit,
	}
}

// ID returns the identity of a previously created ingredient
func (f *IngredientFactory) ID(name string) uuid.UUID {
	return f.ids[name]
}

// UserFactory provides methods to create test users
type UserFactory struct {
	faker *gofakeit.Faker
}

// NewUserFactory creates a new user factory with seeded faker
func NewUserFactory(seed int64) *UserFactory {
	return &UserFactory{faker: gofakeit.New(seed)}
}

// Create creates a user on the given tier
func (f *UserFactory) Create(tier user.Tier) *user.User {
	return user.NewUser(uuid.New(), f.faker.Email(), f.faker.Name(), tier)
}

// Free creates a free-tier user
func (f *UserFactory) Free() *user.User {
	return f.Create(user.TierFree)
}

// Premium creates a premium-tier user
func (f *UserFactory) Premium() *user.User {
	return f.Create(user.TierPremium)
}

// Baseline creates a price baseline
func Baseline(category, store, unit string, price float64) shopping.PriceBaseline {
	return shopping.PriceBaseline{Category: category, Store: store, Unit: unit, PricePerUnit: price}
}
