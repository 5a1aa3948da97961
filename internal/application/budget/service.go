package budget

import (
	"context"
	stderrors "errors"

	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BudgetService implements budget estimation for stored shopping lists
type BudgetService struct {
	lists     outbound.ShoppingListStore
	users     outbound.UserRepository
	baselines outbound.PriceBaselineReader
	policy    user.Policy
	metrics   outbound.PlanningMetrics
	logger    *zap.Logger
}

// NewBudgetService creates a new budget service
func NewBudgetService(
	lists outbound.ShoppingListStore,
	users outbound.UserRepository,
	baselines outbound.PriceBaselineReader,
	policy user.Policy,
	metrics outbound.PlanningMetrics,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		lists:     lists,
		users:     users,
		baselines: baselines,
		policy:    policy,
		metrics:   metrics,
		logger:    logger.Named("budget"),
	}
}

var _ inbound.BudgetService = (*BudgetService)(nil)

// EstimateForList prices a list owned by the caller. Callers whose tier does
// not include budget estimates get a locked placeholder.
func (s *BudgetService) EstimateForList(ctx context.Context, ownerID, listID uuid.UUID) (*inbound.BudgetEstimateDTO, error) {
	list, err := s.lists.FindByID(ctx, listID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewShoppingListNotFoundError(listID.String())
		}
		return nil, errors.NewDatabaseError("find shopping list", err)
	}
	if !list.IsOwnedBy(ownerID) {
		return nil, errors.NewForbiddenError("estimate this shopping list")
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewUserNotFoundError(ownerID.String())
		}
		return nil, errors.NewDatabaseError("find user", err)
	}
	if !s.policy.For(owner.Tier()).BudgetEstimates {
		locked := Locked()
		return &locked, nil
	}

	baselines, err := s.baselines.ListBaselines(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list price baselines", err)
	}

	estimate := Estimate(list.Items, baselines)
	s.metrics.BudgetEstimated(estimate.Confidence)
	s.logger.Debug("Budget estimated",
		zap.String("list_id", listID.String()),
		zap.Int("missing", *estimate.MissingItemCount),
		zap.String("confidence", estimate.Confidence),
	)
	return &estimate, nil
}
