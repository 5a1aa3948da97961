// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/google/uuid"
)

// PlanService defines the meal plan use cases
type PlanService interface {
	GeneratePlan(ctx context.Context, cmd GeneratePlanCommand) (*PlanDTO, error)
	GetPlan(ctx context.Context, ownerID, planID uuid.UUID) (*PlanDTO, error)
	DeletePlan(ctx context.Context, ownerID, planID uuid.UUID) error
}

// ShoppingService defines the shopping list use cases
type ShoppingService interface {
	// BuildAndStore is idempotent: an existing list for the plan is returned unchanged
	BuildAndStore(ctx context.Context, planID uuid.UUID) (uuid.UUID, error)
	GetForPlan(ctx context.Context, ownerID, planID uuid.UUID) (*ShoppingListDTO, error)
	ToggleItemChecked(ctx context.Context, ownerID, itemID uuid.UUID) (*ShoppingItemDTO, error)
	UpdateCategoryChecked(ctx context.Context, cmd UpdateCategoryCommand) (int, error)
	AddAdhocItem(ctx context.Context, cmd AddItemCommand) (*ShoppingItemDTO, error)
}

// BudgetService prices shopping lists against store baselines
type BudgetService interface {
	EstimateForList(ctx context.Context, ownerID, listID uuid.UUID) (*BudgetEstimateDTO, error)
}

// Command objects for operations

// TimePreferences are cooking-time limits honored for entitled callers only
type TimePreferences struct {
	WeeknightMaxMinutes *int
	WeeklyBudgetMinutes *int
}

// GeneratePlanCommand contains data for generating a meal plan.
// Zero values select the configured defaults.
type GeneratePlanCommand struct {
	OwnerID         uuid.UUID
	StartDate       *time.Time
	Days            int
	MealsPerDay     int
	HouseholdSize   int
	Dietary         mealplan.DietaryFlags
	Dislikes        string
	TimePreferences *TimePreferences
}

// UpdateCategoryCommand sets the checked flag for a whole category
type UpdateCategoryCommand struct {
	OwnerID  uuid.UUID
	ListID   uuid.UUID
	Category string
	Checked  bool
}

// AddItemCommand appends a hand-entered item to a list
type AddItemCommand struct {
	OwnerID  uuid.UUID
	ListID   uuid.UUID
	Name     string
	Quantity float64
	Unit     string
}

// Data Transfer Objects

// PlanDTO is the produced plan object
type PlanDTO struct {
	ID             uuid.UUID     `json:"id"`
	OwnerID        uuid.UUID     `json:"owner_id"`
	StartDate      time.Time     `json:"start_date"`
	Days           int           `json:"days"`
	Items          []PlanItemDTO `json:"items"`
	ShoppingListID *uuid.UUID    `json:"shopping_list_id,omitempty"`
}

// PlanItemDTO is one planned meal
type PlanItemDTO struct {
	ID          uuid.UUID         `json:"id"`
	DayIndex    int               `json:"day_index"`
	Date        time.Time         `json:"date"`
	Slot        mealplan.MealSlot `json:"slot"`
	RecipeID    uuid.UUID         `json:"recipe_id"`
	RecipeTitle string            `json:"recipe_title"`
	Servings    int               `json:"servings"`
}

// ShoppingListDTO is the produced shopping list object
type ShoppingListDTO struct {
	ID     uuid.UUID         `json:"id"`
	PlanID uuid.UUID         `json:"plan_id"`
	Items  []ShoppingItemDTO `json:"items"`
}

// ShoppingItemDTO is one shopping list line with its resolved category
type ShoppingItemDTO struct {
	ID           uuid.UUID  `json:"id"`
	IngredientID *uuid.UUID `json:"ingredient_id,omitempty"`
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	Display      string     `json:"display"`
	Category     string     `json:"category"`
	Checked      bool       `json:"checked"`
}

// BudgetTotals are the tiered cost totals
type BudgetTotals struct {
	Cheap    float64 `json:"cheap"`
	Standard float64 `json:"standard"`
	Premium  float64 `json:"premium"`
}

// BudgetEstimateDTO is either a locked placeholder or a computed estimate
type BudgetEstimateDTO struct {
	Locked           bool          `json:"locked"`
	Totals           *BudgetTotals `json:"totals,omitempty"`
	MissingItemCount *int          `json:"missing_item_count,omitempty"`
	Confidence       string        `json:"confidence,omitempty"`
}

// NewShoppingItemDTO converts a domain item for presentation
func NewShoppingItemDTO(item shopping.Item) ShoppingItemDTO {
	return ShoppingItemDTO{
		ID:           item.ID,
		IngredientID: item.IngredientID,
		Name:         item.Name,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		Display:      shopping.FormatQuantity(item.Quantity, item.Unit),
		Category:     item.ResolvedCategory(),
		Checked:      item.Checked,
	}
}

// NewShoppingListDTO converts a domain list for presentation
func NewShoppingListDTO(list *shopping.List) *ShoppingListDTO {
	dto := &ShoppingListDTO{ID: list.ID, PlanID: list.PlanID, Items: make([]ShoppingItemDTO, 0, len(list.Items))}
	for _, item := range list.Items {
		dto.Items = append(dto.Items, NewShoppingItemDTO(item))
	}
	return dto
}

// NewPlanDTO converts a domain plan for presentation
func NewPlanDTO(plan *mealplan.MealPlan) *PlanDTO {
	dto := &PlanDTO{
		ID:        plan.ID(),
		OwnerID:   plan.OwnerID(),
		StartDate: plan.StartDate(),
		Days:      plan.Days(),
		Items:     make([]PlanItemDTO, 0, len(plan.Items())),
	}
	for _, item := range plan.Items() {
		dto.Items = append(dto.Items, PlanItemDTO{
			ID:          item.ID,
			DayIndex:    item.DayIndex,
			Date:        plan.DateOf(item.DayIndex),
			Slot:        item.Slot,
			RecipeID:    item.RecipeID,
			RecipeTitle: item.RecipeTitle,
			Servings:    item.Servings,
		})
	}
	return dto
}
