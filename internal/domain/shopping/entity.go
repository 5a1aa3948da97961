package shopping

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uncategorized is the bucket for items with no ingredient classification
const Uncategorized = "uncategorized"

// Item is one line of a shopping list
type Item struct {
	ID           uuid.UUID
	ListID       uuid.UUID
	IngredientID *uuid.UUID // nil for ad-hoc entries
	Name         string
	Quantity     float64
	Unit         string
	Category     string
	Checked      bool
}

// ResolvedCategory returns the item category, defaulting to Uncategorized
func (i Item) ResolvedCategory() string {
	if strings.TrimSpace(i.Category) == "" {
		return Uncategorized
	}
	return i.Category
}

// IsAdhoc reports whether the item was added by hand rather than derived from a recipe
func (i Item) IsAdhoc() bool {
	return i.IngredientID == nil
}

// List is the consolidated shopping list of a meal plan. At most one exists per plan.
type List struct {
	ID        uuid.UUID
	PlanID    uuid.UUID
	OwnerID   uuid.UUID
	Items     []Item
	CreatedAt time.Time
}

// NewList creates a list for the plan and assigns item identities
func NewList(planID, ownerID uuid.UUID, items []Item) *List {
	list := &List{
		ID:        uuid.New(),
		PlanID:    planID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	for _, item := range items {
		item.ID = uuid.New()
		item.ListID = list.ID
		item.Quantity = RoundQuantity(item.Quantity)
		list.Items = append(list.Items, item)
	}
	return list
}

// IsOwnedBy reports whether the user owns the list
func (l *List) IsOwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}

// PriceBaseline is read-only reference pricing for a category at a store
type PriceBaseline struct {
	Category     string
	Store        string
	Unit         string
	PricePerUnit float64
}
