package gorm

import (
	"context"
	"errors"
	"sort"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var slotRank = map[string]int{
	string(mealplan.SlotBreakfast): 0,
	string(mealplan.SlotLunch):     1,
	string(mealplan.SlotDinner):    2,
}

// PlanRepository implements the plan store using GORM
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) outbound.PlanStore {
	return &PlanRepository{db: db}
}

// Create writes the header and every item atomically
func (r *PlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	model := toMealPlanModel(plan)
	items := model.Items

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			if isDuplicate(err) {
				return outbound.ErrConflict
			}
			return err
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&items, 100).Error; err != nil {
			if isDuplicate(err) {
				return outbound.ErrConflict
			}
			return err
		}
		return nil
	})
}

// FindByID loads the plan with items, recipes and ingredient lines
func (r *PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	var model MealPlanModel

	query := r.db.WithContext(ctx).Preload("Items").Preload("Items.Recipe")
	result := preloadIngredients(query, "Items.Recipe.Ingredients").First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	sort.SliceStable(model.Items, func(i, j int) bool {
		a, b := model.Items[i], model.Items[j]
		if a.DayIndex != b.DayIndex {
			return a.DayIndex < b.DayIndex
		}
		return slotRank[a.Slot] < slotRank[b.Slot]
	})

	return toDomainMealPlan(&model), nil
}

// Delete removes the plan, its items and any shopping list in one transaction
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&MealPlanModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return outbound.ErrNotFound
		}

		lists := tx.Model(&ShoppingListModel{}).Select("id").Where("plan_id = ?", id)
		if err := tx.Where("list_id IN (?)", lists).Delete(&ShoppingListItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", id).Delete(&ShoppingListModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", id).Delete(&MealPlanItemModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&MealPlanModel{}).Error
	})
}
