// Package shoppinglist provides the shopping aggregation engine: it turns a
// persisted meal plan into one consolidated checklist per plan and serves the
// checklist mutations.
package shoppinglist

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/alchemorsel/mealplan/internal/application/shoppinglist")

// RetryPolicy bounds the plan re-read after a fresh write
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy is three attempts, 100ms apart and growing linearly
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 100 * time.Millisecond}
}

// ShoppingService implements the shopping list use cases
type ShoppingService struct {
	plans   outbound.PlanStore
	lists   outbound.ShoppingListStore
	metrics outbound.PlanningMetrics
	retry   RetryPolicy
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *zap.Logger
}

// NewShoppingService creates a new shopping service
func NewShoppingService(
	plans outbound.PlanStore,
	lists outbound.ShoppingListStore,
	metrics outbound.PlanningMetrics,
	retry RetryPolicy,
	logger *zap.Logger,
) *ShoppingService {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	return &ShoppingService{
		plans:   plans,
		lists:   lists,
		metrics: metrics,
		retry:   retry,
		sleep:   sleepContext,
		logger:  logger.Named("shopping"),
	}
}

var _ inbound.ShoppingService = (*ShoppingService)(nil)

// BuildAndStore aggregates the plan's ingredients into its shopping list.
// When a list already exists, or a concurrent build wins the insert, the
// existing list's ID is returned and nothing is written.
func (s *ShoppingService) BuildAndStore(ctx context.Context, planID uuid.UUID) (listID uuid.UUID, err error) {
	ctx, span := tracer.Start(ctx, "shopping.BuildAndStore")
	span.SetAttributes(attribute.String("plan_id", planID.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if existing, err := s.lists.FindByPlanID(ctx, planID); err == nil {
		return existing.ID, nil
	} else if !stderrors.Is(err, outbound.ErrNotFound) {
		return uuid.Nil, errors.NewDatabaseError("find shopping list", err)
	}

	plan, err := s.readPlan(ctx, planID)
	if err != nil {
		return uuid.Nil, err
	}

	items, mismatches := Aggregate(ScaleLines(plan.Items()))
	for _, m := range mismatches {
		s.metrics.UnitMismatch()
		s.logger.Warn("Ingredient kept in incompatible unit classes",
			zap.String("plan_id", planID.String()),
			zap.String("ingredient_id", m.IngredientID.String()),
			zap.String("ingredient", m.Name),
			zap.Strings("units", m.Units),
		)
	}

	list := shopping.NewList(plan.ID(), plan.OwnerID(), items)
	if err := s.lists.Create(ctx, list); err != nil {
		if !stderrors.Is(err, outbound.ErrConflict) {
			return uuid.Nil, errors.NewDatabaseError("create shopping list", err)
		}

		s.metrics.ShoppingListConflict()
		s.logger.Info("Shopping list created concurrently, using existing list",
			zap.String("plan_id", planID.String()),
		)
		existing, err := s.lists.FindByPlanID(ctx, planID)
		if err != nil {
			return uuid.Nil, errors.NewDatabaseError("find shopping list after conflict", err)
		}
		return existing.ID, nil
	}

	s.metrics.ShoppingListBuilt(len(list.Items))
	s.logger.Info("Shopping list built",
		zap.String("plan_id", planID.String()),
		zap.String("list_id", list.ID.String()),
		zap.Int("items", len(list.Items)),
	)
	return list.ID, nil
}

// readPlan re-reads a plan that may have been written moments ago
func (s *ShoppingService) readPlan(ctx context.Context, planID uuid.UUID) (*mealplan.MealPlan, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retry.Attempts; attempt++ {
		plan, err := s.plans.FindByID(ctx, planID)
		if err == nil {
			return plan, nil
		}
		lastErr = err

		if attempt == s.retry.Attempts {
			break
		}
		s.logger.Debug("Retrying plan read",
			zap.String("plan_id", planID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if err := s.sleep(ctx, time.Duration(attempt)*s.retry.Backoff); err != nil {
			return nil, errors.NewTransientReadFailureError("meal plan", attempt, err)
		}
	}

	if stderrors.Is(lastErr, outbound.ErrNotFound) {
		return nil, errors.NewPlanNotFoundError(planID.String())
	}
	return nil, errors.NewTransientReadFailureError("meal plan", s.retry.Attempts, lastErr)
}

// GetForPlan returns the list of a plan owned by the caller
func (s *ShoppingService) GetForPlan(ctx context.Context, ownerID, planID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	list, err := s.lists.FindByPlanID(ctx, planID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewShoppingListNotFoundError("for plan " + planID.String())
		}
		return nil, errors.NewDatabaseError("find shopping list", err)
	}
	if !list.IsOwnedBy(ownerID) {
		return nil, errors.NewForbiddenError("view this shopping list")
	}

	SortItems(list.Items)
	return inbound.NewShoppingListDTO(list), nil
}

// ToggleItemChecked flips one item's checked flag
func (s *ShoppingService) ToggleItemChecked(ctx context.Context, ownerID, itemID uuid.UUID) (*inbound.ShoppingItemDTO, error) {
	item, listOwner, err := s.lists.FindItem(ctx, itemID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewNotFoundError("Shopping list item")
		}
		return nil, errors.NewDatabaseError("find shopping list item", err)
	}
	if listOwner != ownerID {
		return nil, errors.NewForbiddenError("update this shopping list")
	}

	item.Checked = !item.Checked
	if err := s.lists.SetItemChecked(ctx, itemID, item.Checked); err != nil {
		return nil, errors.NewDatabaseError("update shopping list item", err)
	}

	dto := inbound.NewShoppingItemDTO(*item)
	return &dto, nil
}

// UpdateCategoryChecked sets the checked flag on every item of a category and
// returns how many items were touched. The uncategorized bucket includes items
// without any category.
func (s *ShoppingService) UpdateCategoryChecked(ctx context.Context, cmd inbound.UpdateCategoryCommand) (int, error) {
	category := strings.TrimSpace(cmd.Category)
	if category == "" {
		return 0, errors.NewValidationError("category is required")
	}

	if _, err := s.loadOwnedList(ctx, cmd.OwnerID, cmd.ListID); err != nil {
		return 0, err
	}

	affected, err := s.lists.SetCategoryChecked(ctx, cmd.ListID, category, cmd.Checked)
	if err != nil {
		return 0, errors.NewDatabaseError("update shopping list category", err)
	}

	s.logger.Debug("Category checked state updated",
		zap.String("list_id", cmd.ListID.String()),
		zap.String("category", category),
		zap.Bool("checked", cmd.Checked),
		zap.Int("affected", affected),
	)
	return affected, nil
}

// AddAdhocItem appends a hand-entered item. Known units are normalized the
// same way as recipe-derived items.
func (s *ShoppingService) AddAdhocItem(ctx context.Context, cmd inbound.AddItemCommand) (*inbound.ShoppingItemDTO, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, errors.NewValidationError("item name is required")
	}
	if cmd.Quantity < 0 {
		return nil, errors.NewValidationError("quantity must not be negative")
	}

	if _, err := s.loadOwnedList(ctx, cmd.OwnerID, cmd.ListID); err != nil {
		return nil, err
	}

	quantity, unit := cmd.Quantity, strings.ToLower(strings.TrimSpace(cmd.Unit))
	if unit != "" {
		if q, u, err := shopping.ConvertToNormalizedUnit(cmd.Quantity, unit); err == nil {
			quantity, unit = q, u
		}
	}

	item := &shopping.Item{
		ID:       uuid.New(),
		ListID:   cmd.ListID,
		Name:     name,
		Quantity: shopping.RoundQuantity(quantity),
		Unit:     unit,
	}
	if err := s.lists.AddItem(ctx, item); err != nil {
		return nil, errors.NewDatabaseError("add shopping list item", err)
	}

	dto := inbound.NewShoppingItemDTO(*item)
	return &dto, nil
}

func (s *ShoppingService) loadOwnedList(ctx context.Context, ownerID, listID uuid.UUID) (*shopping.List, error) {
	list, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewShoppingListNotFoundError(listID.String())
		}
		return nil, errors.NewDatabaseError("find shopping list", err)
	}
	if !list.IsOwnedBy(ownerID) {
		return nil, errors.NewForbiddenError("update this shopping list")
	}
	return list, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
