package gorm

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository reads and seeds the shared recipe catalog
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

var _ outbound.CatalogReader = (*CatalogRepository)(nil)

// FindRecipes applies the dietary flags in SQL and preloads ingredient lines in recipe order
func (r *CatalogRepository) FindRecipes(ctx context.Context, filter outbound.CatalogFilter) ([]mealplan.Recipe, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{})
	if filter.Dietary.Vegetarian {
		query = query.Where("vegetarian = ?", true)
	}
	if filter.Dietary.DairyFree {
		query = query.Where("dairy_free = ?", true)
	}

	var models []RecipeModel
	err := preloadIngredients(query, "Ingredients").
		Order("title ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	recipes := make([]mealplan.Recipe, 0, len(models))
	for i := range models {
		recipes = append(recipes, toDomainRecipe(&models[i]))
	}
	return recipes, nil
}

// SaveRecipe inserts a recipe with its ingredient lines. Dictionary entries
// for the ingredients are created when missing.
func (r *CatalogRepository) SaveRecipe(ctx context.Context, recipe mealplan.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ing := range recipe.Ingredients {
			entry := IngredientModel{ID: ing.IngredientID, Name: ing.Name, Category: ing.Category}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
				return err
			}
		}

		model := toRecipeModel(recipe)
		lines := model.Ingredients
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&lines).Error
	})
}

// preloadIngredients preloads the ingredient lines under path together with
// their dictionary entries, ordered by position
func preloadIngredients(query *gorm.DB, path string) *gorm.DB {
	return query.
		Preload(path, func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload(path + ".Ingredient")
}
