// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/google/uuid"
)

// Sentinel errors every store implementation returns
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")

	// ErrCacheMiss is returned by caches for absent or expired keys
	ErrCacheMiss = errors.New("cache miss")
)

// CatalogFilter narrows the recipe catalog on the storage side
type CatalogFilter struct {
	Dietary mealplan.DietaryFlags
}

// CatalogReader queries the shared recipe catalog
type CatalogReader interface {
	// FindRecipes returns recipes with ingredients, ordered by title
	FindRecipes(ctx context.Context, filter CatalogFilter) ([]mealplan.Recipe, error)
}

// PlanStore persists meal plans
type PlanStore interface {
	// Create writes the plan header and all items in one transaction
	Create(ctx context.Context, plan *mealplan.MealPlan) error
	// FindByID loads the plan with items, their recipes and ingredients
	FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error)
	// Delete removes the plan, its items and any shopping list in one transaction
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShoppingListStore persists shopping lists
type ShoppingListStore interface {
	// Create writes the list and its items in one transaction.
	// Returns ErrConflict when a list already exists for the plan.
	Create(ctx context.Context, list *shopping.List) error
	FindByPlanID(ctx context.Context, planID uuid.UUID) (*shopping.List, error)
	FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*shopping.Item, uuid.UUID, error)
	AddItem(ctx context.Context, item *shopping.Item) error
	SetItemChecked(ctx context.Context, itemID uuid.UUID, checked bool) error
	// SetCategoryChecked updates every item in the category and returns the affected count.
	// The uncategorized bucket also matches items with no category at all.
	SetCategoryChecked(ctx context.Context, listID uuid.UUID, category string, checked bool) (int, error)
}

// PriceBaselineReader reads store price reference data
type PriceBaselineReader interface {
	ListBaselines(ctx context.Context) ([]shopping.PriceBaseline, error)
}

// UserRepository resolves users and their tiers
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PlanningMetrics records engine outcomes
type PlanningMetrics interface {
	PlanGenerated(days, items int)
	AllocationFailed(reason string)
	ShoppingListBuilt(items int)
	ShoppingListConflict()
	UnitMismatch()
	BudgetEstimated(confidence string)
}
