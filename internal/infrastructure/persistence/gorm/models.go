// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Tier      string    `gorm:"type:varchar(50);not null;default:'free'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IngredientModel is the shared ingredient dictionary
type IngredientModel struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Category string    `gorm:"type:varchar(100);index"`
}

// RecipeModel represents the GORM model for catalog recipes
type RecipeModel struct {
	ID        uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Title     string      `gorm:"type:varchar(255);not null;index"`
	MealSlots StringSlice `gorm:"type:json"`
	Servings  int         `gorm:"not null;default:1"`

	// Timing in minutes, NULL when unknown
	PrepTimeMinutes  *int `gorm:"column:prep_time_minutes"`
	CookTimeMinutes  *int `gorm:"column:cook_time_minutes"`
	TotalTimeMinutes *int `gorm:"column:total_time_minutes"`

	Vegetarian bool `gorm:"not null;default:false;index"`
	DairyFree  bool `gorm:"not null;default:false;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Ingredients []RecipeIngredientModel `gorm:"foreignKey:RecipeID"`
}

// RecipeIngredientModel is one ingredient line of a recipe
type RecipeIngredientModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID     uuid.UUID `gorm:"type:char(36);not null;index"`
	IngredientID uuid.UUID `gorm:"type:char(36);not null;index"`
	Quantity     float64   `gorm:"not null"`
	Unit         string    `gorm:"type:varchar(50)"`
	Position     int       `gorm:"not null;default:0"`

	Ingredient IngredientModel `gorm:"foreignKey:IngredientID"`
}

// MealPlanModel is the plan header
type MealPlanModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:char(36);not null;index"`
	StartDate time.Time `gorm:"not null"`
	Days      int       `gorm:"not null"`
	CreatedAt time.Time

	Items []MealPlanItemModel `gorm:"foreignKey:PlanID"`
}

// MealPlanItemModel is one (day, slot) assignment. The composite unique
// index keeps a position from being filled twice.
type MealPlanItemModel struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	PlanID   uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_plan_position"`
	DayIndex int       `gorm:"not null;uniqueIndex:idx_plan_position"`
	Slot     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_plan_position"`
	RecipeID uuid.UUID `gorm:"type:char(36);not null;index"`
	Servings int       `gorm:"not null"`

	Recipe RecipeModel `gorm:"foreignKey:RecipeID"`
}

// ShoppingListModel is the list header, unique per plan
type ShoppingListModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	PlanID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex"`
	OwnerID   uuid.UUID `gorm:"type:char(36);not null;index"`
	CreatedAt time.Time

	Items []ShoppingListItemModel `gorm:"foreignKey:ListID"`
}

// ShoppingListItemModel is one list line. IngredientID is NULL for ad-hoc entries.
type ShoppingListItemModel struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey"`
	ListID       uuid.UUID  `gorm:"type:char(36);not null;index"`
	IngredientID *uuid.UUID `gorm:"type:char(36)"`
	Name         string     `gorm:"type:varchar(255);not null"`
	Quantity     float64    `gorm:"not null"`
	Unit         string     `gorm:"type:varchar(50)"`
	Category     string     `gorm:"type:varchar(100);index"`
	Checked      bool       `gorm:"not null;default:false"`
	Position     int        `gorm:"not null;default:0"`
}

// PriceBaselineModel is per-store reference pricing for a category
type PriceBaselineModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Category     string    `gorm:"type:varchar(100);not null;index"`
	Store        string    `gorm:"type:varchar(100);not null"`
	Unit         string    `gorm:"type:varchar(50);not null"`
	PricePerUnit float64   `gorm:"not null"`
}

// StringSlice custom type for handling string arrays in JSON columns
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// AllModels lists every model in dependency order for migration
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&IngredientModel{},
		&RecipeModel{},
		&RecipeIngredientModel{},
		&MealPlanModel{},
		&MealPlanItemModel{},
		&ShoppingListModel{},
		&ShoppingListItemModel{},
		&PriceBaselineModel{},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// BeforeCreate hooks

func (u *UserModel) BeforeCreate(tx *gorm.DB) error             { ensureID(&u.ID); return nil }
func (i *IngredientModel) BeforeCreate(tx *gorm.DB) error       { ensureID(&i.ID); return nil }
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error           { ensureID(&r.ID); return nil }
func (r *RecipeIngredientModel) BeforeCreate(tx *gorm.DB) error { ensureID(&r.ID); return nil }
func (p *MealPlanModel) BeforeCreate(tx *gorm.DB) error         { ensureID(&p.ID); return nil }
func (p *MealPlanItemModel) BeforeCreate(tx *gorm.DB) error     { ensureID(&p.ID); return nil }
func (l *ShoppingListModel) BeforeCreate(tx *gorm.DB) error     { ensureID(&l.ID); return nil }
func (l *ShoppingListItemModel) BeforeCreate(tx *gorm.DB) error { ensureID(&l.ID); return nil }
func (p *PriceBaselineModel) BeforeCreate(tx *gorm.DB) error    { ensureID(&p.ID); return nil }

// TableName methods for custom table names
func (UserModel) TableName() string {
	return "users"
}

func (IngredientModel) TableName() string {
	return "ingredients"
}

func (RecipeModel) TableName() string {
	return "recipes"
}

func (RecipeIngredientModel) TableName() string {
	return "recipe_ingredients"
}

func (MealPlanModel) TableName() string {
	return "meal_plans"
}

func (MealPlanItemModel) TableName() string {
	return "meal_plan_items"
}

func (ShoppingListModel) TableName() string {
	return "shopping_lists"
}

func (ShoppingListItemModel) TableName() string {
	return "shopping_list_items"
}

func (PriceBaselineModel) TableName() string {
	return "price_baselines"
}
