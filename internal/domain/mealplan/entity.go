package mealplan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MealPlanItem assigns one recipe to one (day, slot) position
type MealPlanItem struct {
	ID          uuid.UUID
	DayIndex    int
	Slot        MealSlot
	RecipeID    uuid.UUID
	RecipeTitle string
	Servings    int

	// Recipe is populated on reads that need ingredients
	Recipe *Recipe
}

type slotKey struct {
	day  int
	slot MealSlot
}

// MealPlan is the aggregate root for a generated plan.
// It is persisted whole or not at all.
type MealPlan struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	startDate time.Time
	days      int
	items     []MealPlanItem
	createdAt time.Time

	assigned map[slotKey]struct{}
}

// NewMealPlan creates an empty plan for the owner
func NewMealPlan(ownerID uuid.UUID, startDate time.Time, days int) (*MealPlan, error) {
	if days < 1 {
		return nil, ErrInvalidDays
	}

	return &MealPlan{
		id:        uuid.New(),
		ownerID:   ownerID,
		startDate: truncateDay(startDate),
		days:      days,
		createdAt: time.Now().UTC(),
		assigned:  make(map[slotKey]struct{}),
	}, nil
}

// Rehydrate rebuilds a plan from persisted state without re-validating coverage
func Rehydrate(id, ownerID uuid.UUID, startDate time.Time, days int, items []MealPlanItem, createdAt time.Time) *MealPlan {
	p := &MealPlan{
		id:        id,
		ownerID:   ownerID,
		startDate: startDate,
		days:      days,
		items:     items,
		createdAt: createdAt,
		assigned:  make(map[slotKey]struct{}, len(items)),
	}
	for _, item := range items {
		p.assigned[slotKey{item.DayIndex, item.Slot}] = struct{}{}
	}
	return p
}

// ID returns the plan identifier
func (p *MealPlan) ID() uuid.UUID {
	return p.id
}

// OwnerID returns the owning user
func (p *MealPlan) OwnerID() uuid.UUID {
	return p.ownerID
}

// StartDate returns the first planned day
func (p *MealPlan) StartDate() time.Time {
	return p.startDate
}

// Days returns the plan horizon
func (p *MealPlan) Days() int {
	return p.days
}

// Items returns the planned items
func (p *MealPlan) Items() []MealPlanItem {
	return p.items
}

// CreatedAt returns when the plan was generated
func (p *MealPlan) CreatedAt() time.Time {
	return p.createdAt
}

// DateOf returns the calendar date for a day index
func (p *MealPlan) DateOf(dayIndex int) time.Time {
	return p.startDate.AddDate(0, 0, dayIndex)
}

// IsOwnedBy reports whether the user owns the plan
func (p *MealPlan) IsOwnedBy(userID uuid.UUID) bool {
	return p.ownerID == userID
}

// Assign places a recipe into a (day, slot) position
func (p *MealPlan) Assign(dayIndex int, slot MealSlot, recipe Recipe, servings int) error {
	if dayIndex < 0 || dayIndex >= p.days {
		return fmt.Errorf("%w: %d", ErrDayOutOfRange, dayIndex)
	}
	if servings < 1 {
		return ErrInvalidServings
	}
	if !recipe.Serves(slot) {
		return fmt.Errorf("%w: %s for %q", ErrSlotNotApplicable, slot, recipe.Title)
	}

	key := slotKey{dayIndex, slot}
	if _, taken := p.assigned[key]; taken {
		return fmt.Errorf("%w: day %d %s", ErrDuplicateSlot, dayIndex, slot)
	}
	p.assigned[key] = struct{}{}

	p.items = append(p.items, MealPlanItem{
		ID:          uuid.New(),
		DayIndex:    dayIndex,
		Slot:        slot,
		RecipeID:    recipe.ID,
		RecipeTitle: recipe.Title,
		Servings:    servings,
	})
	return nil
}

// EnsureComplete verifies every (day, slot) pair has exactly one item
func (p *MealPlan) EnsureComplete(slots []MealSlot) error {
	if len(p.items) != p.days*len(slots) {
		return ErrIncompletePlan
	}
	for day := 0; day < p.days; day++ {
		for _, slot := range slots {
			if _, ok := p.assigned[slotKey{day, slot}]; !ok {
				return fmt.Errorf("%w: day %d %s", ErrIncompletePlan, day, slot)
			}
		}
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextMonday returns the first Monday strictly after the given day
func NextMonday(from time.Time) time.Time {
	day := truncateDay(from)
	offset := (8 - int(day.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

// IsWeeknight reports whether the date falls Monday through Friday
func IsWeeknight(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}
