package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShoppingListRepository implements the shopping list store using GORM
type ShoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository
func NewShoppingListRepository(db *gorm.DB) outbound.ShoppingListStore {
	return &ShoppingListRepository{db: db}
}

// Create writes the list and its items. The unique plan_id index turns a
// concurrent second build into ErrConflict.
func (r *ShoppingListRepository) Create(ctx context.Context, list *shopping.List) error {
	model := toShoppingListModel(list)
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
		return tx.CreateInBatches(&items, 100).Error
	})
}

// FindByPlanID loads the list built for a plan
func (r *ShoppingListRepository) FindByPlanID(ctx context.Context, planID uuid.UUID) (*shopping.List, error) {
	return r.findOne(ctx, "plan_id = ?", planID)
}

// FindByID loads a list with its items
func (r *ShoppingListRepository) FindByID(ctx context.Context, id uuid.UUID) (*shopping.List, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *ShoppingListRepository) findOne(ctx context.Context, cond string, arg uuid.UUID) (*shopping.List, error) {
	var model ShoppingListModel

	result := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&model, cond, arg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, result.Error
	}

	return toDomainShoppingList(&model), nil
}

// FindItem returns the item and the owner of its list
func (r *ShoppingListRepository) FindItem(ctx context.Context, itemID uuid.UUID) (*shopping.Item, uuid.UUID, error) {
	db := r.db.WithContext(ctx)

	var model ShoppingListItemModel
	if err := db.First(&model, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, outbound.ErrNotFound
		}
		return nil, uuid.Nil, err
	}

	var list ShoppingListModel
	if err := db.Select("id", "owner_id").First(&list, "id = ?", model.ListID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, outbound.ErrNotFound
		}
		return nil, uuid.Nil, err
	}

	item := toDomainShoppingItem(&model)
	return &item, list.OwnerID, nil
}

// AddItem appends an item after the existing ones
func (r *ShoppingListRepository) AddItem(ctx context.Context, item *shopping.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ShoppingListModel{}).Where("id = ?", item.ListID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return outbound.ErrNotFound
		}

		var next int
		if err := tx.Model(&ShoppingListItemModel{}).
			Where("list_id = ?", item.ListID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}

		model := toShoppingItemModel(*item)
		model.Position = next
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		item.ID = model.ID
		return nil
	})
}

// SetItemChecked flips a single item
func (r *ShoppingListRepository) SetItemChecked(ctx context.Context, itemID uuid.UUID, checked bool) error {
	result := r.db.WithContext(ctx).
		Model(&ShoppingListItemModel{}).
		Where("id = ?", itemID).
		Update("checked", checked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

// SetCategoryChecked updates every item of the category, matching case-insensitively
func (r *ShoppingListRepository) SetCategoryChecked(ctx context.Context, listID uuid.UUID, category string, checked bool) (int, error) {
	var affected int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ShoppingListModel{}).Where("id = ?", listID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return outbound.ErrNotFound
		}

		query := tx.Model(&ShoppingListItemModel{}).Where("list_id = ?", listID)
		if strings.EqualFold(strings.TrimSpace(category), shopping.Uncategorized) {
			query = query.Where("(LOWER(category) = ? OR TRIM(COALESCE(category, '')) = '')", shopping.Uncategorized)
		} else {
			query = query.Where("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(category)))
		}

		result := query.Update("checked", checked)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
