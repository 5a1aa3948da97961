package handlers

import (
	"net/http"

	"github.com/alchemorsel/mealplan/internal/infrastructure/security"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"go.uber.org/zap"
)

// ShoppingHandlers handles shopping list item and budget requests
type ShoppingHandlers struct {
	base
	shopping inbound.ShoppingService
	budget   inbound.BudgetService
}

// NewShoppingHandlers creates the shopping list handlers
func NewShoppingHandlers(
	shopping inbound.ShoppingService,
	budget inbound.BudgetService,
	validator *security.ValidationService,
	logger *zap.Logger,
) *ShoppingHandlers {
	return &ShoppingHandlers{
		base:     newBase(validator, logger.Named("shopping_api")),
		shopping: shopping,
		budget:   budget,
	}
}

// UpdateCategoryRequest is the body of PUT /shopping-lists/{listID}/categories/{category}
type UpdateCategoryRequest struct {
	Checked *bool `json:"checked" validate:"required"`
}

// AddItemRequest is the body of POST /shopping-lists/{listID}/items
type AddItemRequest struct {
	Name     string  `json:"name" validate:"not_blank,ingredient"`
	Quantity float64 `json:"quantity" validate:"gt=0,lte=100000"`
	Unit     string  `json:"unit" validate:"max=32"`
}

// ToggleItem handles POST /api/v1/shopping-list-items/{itemID}/toggle
func (h *ShoppingHandlers) ToggleItem(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.shopping.ToggleItemChecked(r.Context(), owner, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// UpdateCategory handles PUT /api/v1/shopping-lists/{listID}/categories/{category}
func (h *ShoppingHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	listID, err := pathID(r, "listID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req UpdateCategoryRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category := pathString(r, "category")
	updated, err := h.shopping.UpdateCategoryChecked(r.Context(), inbound.UpdateCategoryCommand{
		OwnerID:  owner,
		ListID:   listID,
		Category: category,
		Checked:  *req.Checked,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"checked":  *req.Checked,
		"updated":  updated,
	})
}

// AddItem handles POST /api/v1/shopping-lists/{listID}/items
func (h *ShoppingHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	listID, err := pathID(r, "listID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req AddItemRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.shopping.AddAdhocItem(r.Context(), inbound.AddItemCommand{
		OwnerID:  owner,
		ListID:   listID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

// EstimateBudget handles GET /api/v1/shopping-lists/{listID}/budget
func (h *ShoppingHandlers) EstimateBudget(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	listID, err := pathID(r, "listID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	estimate, err := h.budget.EstimateForList(r.Context(), owner, listID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, estimate)
}
