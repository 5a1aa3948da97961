package sqlite

import (
	"context"
	"fmt"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	gormModels "github.com/alchemorsel/mealplan/internal/infrastructure/persistence/gorm"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Demo accounts created by SeedDatabase
var (
	DemoFreeUserID    = uuid.MustParse("5b0a8c1e-2f4d-4a43-9a4e-000000000001")
	DemoPremiumUserID = uuid.MustParse("5b0a8c1e-2f4d-4a43-9a4e-000000000002")
)

type seedIngredient struct {
	name     string
	category string
}

var seedIngredients = map[string]seedIngredient{
	"oats":      {"Rolled oats", "pantry"},
	"milk":      {"Milk", "dairy"},
	"banana":    {"Banana", "produce"},
	"eggs":      {"Eggs", "dairy"},
	"bread":     {"Sourdough bread", "bakery"},
	"avocado":   {"Avocado", "produce"},
	"yogurt":    {"Greek yogurt", "dairy"},
	"berries":   {"Mixed berries", "produce"},
	"chickpeas": {"Chickpeas", "pantry"},
	"tomato":    {"Tomato", "produce"},
	"cucumber":  {"Cucumber", "produce"},
	"feta":      {"Feta", "dairy"},
	"rice":      {"Basmati rice", "pantry"},
	"lentils":   {"Red lentils", "pantry"},
	"onion":     {"Onion", "produce"},
	"garlic":    {"Garlic", "produce"},
	"chicken":   {"Chicken thighs", "meat"},
	"spaghetti": {"Spaghetti", "pantry"},
	"parmesan":  {"Parmesan", "dairy"},
	"salmon":    {"Salmon fillet", "seafood"},
	"broccoli":  {"Broccoli", "produce"},
	"tofu":      {"Firm tofu", "produce"},
	"soy":       {"Soy sauce", "pantry"},
	"tortilla":  {"Flour tortillas", "bakery"},
	"beans":     {"Black beans", "pantry"},
	"oil":       {"Olive oil", ""},
}

type seedLine struct {
	key  string
	qty  float64
	unit string
}

type seedRecipe struct {
	title      string
	slots      []mealplan.MealSlot
	servings   int
	prep, cook *int
	total      *int
	vegetarian bool
	dairyFree  bool
	lines      []seedLine
}

func minutes(n int) *int { return &n }

var seedRecipes = []seedRecipe{
	{title: "Overnight Oats", slots: []mealplan.MealSlot{mealplan.SlotBreakfast}, servings: 2, total: minutes(5), vegetarian: true,
		lines: []seedLine{{"oats", 160, "g"}, {"milk", 1, "cup"}, {"banana", 1, "pcs"}}},
	{title: "Avocado Toast with Eggs", slots: []mealplan.MealSlot{mealplan.SlotBreakfast, mealplan.SlotLunch}, servings: 2, prep: minutes(5), cook: minutes(10), vegetarian: true, dairyFree: true,
		lines: []seedLine{{"bread", 4, "slice"}, {"avocado", 1, "pcs"}, {"eggs", 4, "pcs"}}},
	{title: "Yogurt Berry Bowl", slots: []mealplan.MealSlot{mealplan.SlotBreakfast}, servings: 1, total: minutes(5), vegetarian: true,
		lines: []seedLine{{"yogurt", 200, "g"}, {"berries", 0.5, "cup"}}},
	{title: "Chickpea Greek Salad", slots: []mealplan.MealSlot{mealplan.SlotLunch}, servings: 2, total: minutes(15), vegetarian: true,
		lines: []seedLine{{"chickpeas", 400, "g"}, {"tomato", 2, "pcs"}, {"cucumber", 1, "pcs"}, {"feta", 100, "g"}, {"oil", 2, "tbsp"}}},
	{title: "Red Lentil Soup", slots: []mealplan.MealSlot{mealplan.SlotLunch, mealplan.SlotDinner}, servings: 4, prep: minutes(10), cook: minutes(25), vegetarian: true, dairyFree: true,
		lines: []seedLine{{"lentils", 300, "g"}, {"onion", 1, "pcs"}, {"garlic", 2, "clove"}, {"tomato", 400, "g"}}},
	{title: "Black Bean Burritos", slots: []mealplan.MealSlot{mealplan.SlotLunch, mealplan.SlotDinner}, servings: 4, total: minutes(25), vegetarian: true, dairyFree: true,
		lines: []seedLine{{"tortilla", 8, "pcs"}, {"beans", 800, "g"}, {"rice", 1, "cup"}, {"onion", 1, "pcs"}}},
	{title: "Chicken and Rice Skillet", slots: []mealplan.MealSlot{mealplan.SlotDinner}, servings: 4, prep: minutes(15), cook: minutes(30), dairyFree: true,
		lines: []seedLine{{"chicken", 1, "kg"}, {"rice", 300, "g"}, {"onion", 1, "pcs"}, {"garlic", 3, "clove"}, {"oil", 2, "tbsp"}}},
	{title: "Spaghetti Pomodoro", slots: []mealplan.MealSlot{mealplan.SlotDinner}, servings: 4, total: minutes(30), vegetarian: true,
		lines: []seedLine{{"spaghetti", 500, "g"}, {"tomato", 800, "g"}, {"garlic", 2, "clove"}, {"parmesan", 60, "g"}, {"oil", 3, "tbsp"}}},
	{title: "Sheet Pan Salmon and Broccoli", slots: []mealplan.MealSlot{mealplan.SlotDinner}, servings: 2, prep: minutes(10), cook: minutes(20), dairyFree: true,
		lines: []seedLine{{"salmon", 400, "g"}, {"broccoli", 1, "head"}, {"oil", 1, "tbsp"}}},
	{title: "Tofu Stir Fry", slots: []mealplan.MealSlot{mealplan.SlotDinner}, servings: 3, vegetarian: true, dairyFree: true,
		lines: []seedLine{{"tofu", 400, "g"}, {"broccoli", 1, "head"}, {"soy", 3, "tbsp"}, {"rice", 250, "g"}}},
}

var seedBaselines = []gormModels.PriceBaselineModel{
	{Category: "produce", Store: "FreshMart", Unit: "pcs", PricePerUnit: 0.60},
	{Category: "produce", Store: "ValueGrocer", Unit: "pcs", PricePerUnit: 0.45},
	{Category: "produce", Store: "FreshMart", Unit: "kg", PricePerUnit: 3.20},
	{Category: "produce", Store: "ValueGrocer", Unit: "kg", PricePerUnit: 2.40},
	{Category: "dairy", Store: "FreshMart", Unit: "kg", PricePerUnit: 9.50},
	{Category: "dairy", Store: "ValueGrocer", Unit: "kg", PricePerUnit: 7.80},
	{Category: "dairy", Store: "FreshMart", Unit: "l", PricePerUnit: 1.30},
	{Category: "dairy", Store: "FreshMart", Unit: "pcs", PricePerUnit: 0.35},
	{Category: "pantry", Store: "FreshMart", Unit: "kg", PricePerUnit: 2.90},
	{Category: "pantry", Store: "ValueGrocer", Unit: "kg", PricePerUnit: 1.90},
	{Category: "meat", Store: "FreshMart", Unit: "kg", PricePerUnit: 11.00},
	{Category: "meat", Store: "ValueGrocer", Unit: "kg", PricePerUnit: 8.50},
	{Category: "seafood", Store: "FreshMart", Unit: "kg", PricePerUnit: 24.00},
	{Category: "bakery", Store: "FreshMart", Unit: "pcs", PricePerUnit: 0.50},
}

// SeedDatabase populates the database with demo users, a small catalog and price baselines
func SeedDatabase(db *gorm.DB) error {
	// Check if data already exists
	var userCount int64
	if err := db.Model(&gormModels.UserModel{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount > 0 {
		return nil // Already seeded
	}

	demoUsers := []gormModels.UserModel{
		{ID: DemoFreeUserID, Email: "cook@mealplan.local", Name: "Home Cook", Tier: "free"},
		{ID: DemoPremiumUserID, Email: "planner@mealplan.local", Name: "Meal Planner", Tier: "premium"},
	}
	for i := range demoUsers {
		if err := db.Create(&demoUsers[i]).Error; err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}
	}

	ingredientIDs := make(map[string]uuid.UUID, len(seedIngredients))
	for key := range seedIngredients {
		ingredientIDs[key] = uuid.NewSHA1(uuid.NameSpaceOID, []byte("ingredient:"+key))
	}

	catalog := gormModels.NewCatalogRepository(db)
	for _, sr := range seedRecipes {
		recipe := mealplan.Recipe{
			ID:           uuid.New(),
			Title:        sr.title,
			MealSlots:    sr.slots,
			Servings:     sr.servings,
			PrepMinutes:  sr.prep,
			CookMinutes:  sr.cook,
			TotalMinutes: sr.total,
			Vegetarian:   sr.vegetarian,
			DairyFree:    sr.dairyFree,
		}
		for _, line := range sr.lines {
			ing := seedIngredients[line.key]
			recipe.Ingredients = append(recipe.Ingredients, mealplan.RecipeIngredient{
				IngredientID: ingredientIDs[line.key],
				Name:         ing.name,
				Category:     ing.category,
				Quantity:     line.qty,
				Unit:         line.unit,
			})
		}
		if err := catalog.SaveRecipe(context.Background(), recipe); err != nil {
			return fmt.Errorf("failed to create demo recipe %q: %w", sr.title, err)
		}
	}

	baselines := make([]gormModels.PriceBaselineModel, len(seedBaselines))
	copy(baselines, seedBaselines)
	if err := db.Create(&baselines).Error; err != nil {
		return fmt.Errorf("failed to create price baselines: %w", err)
	}

	return nil
}
