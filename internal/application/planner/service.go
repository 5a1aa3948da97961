// Package planner provides the plan allocation engine: it assigns exactly one
// recipe to every (day, meal slot) position of a plan under dietary, dislike,
// entitlement and cooking-time constraints.
package planner

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/alchemorsel/mealplan/internal/application/planner")

// ListBuilder builds the shopping list of a freshly persisted plan
type ListBuilder interface {
	BuildAndStore(ctx context.Context, planID uuid.UUID) (uuid.UUID, error)
}

// Options holds request defaults
type Options struct {
	DefaultDays          int
	DefaultMealsPerDay   int
	DefaultHouseholdSize int
}

// DefaultOptions returns a 7-day, three-meal, two-person default
func DefaultOptions() Options {
	return Options{DefaultDays: 7, DefaultMealsPerDay: 3, DefaultHouseholdSize: 2}
}

// PlanService implements the plan use cases
type PlanService struct {
	catalog  outbound.CatalogReader
	plans    outbound.PlanStore
	users    outbound.UserRepository
	lists    ListBuilder
	policy   user.Policy
	metrics  outbound.PlanningMetrics
	shuffler Shuffler
	options  Options
	now      func() time.Time
	logger   *zap.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(
	catalog outbound.CatalogReader,
	plans outbound.PlanStore,
	users outbound.UserRepository,
	lists ListBuilder,
	policy user.Policy,
	metrics outbound.PlanningMetrics,
	shuffler Shuffler,
	options Options,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		catalog:  catalog,
		plans:    plans,
		users:    users,
		lists:    lists,
		policy:   policy,
		metrics:  metrics,
		shuffler: shuffler,
		options:  options,
		now:      time.Now,
		logger:   logger.Named("planner"),
	}
}

var _ inbound.PlanService = (*PlanService)(nil)

// GeneratePlan produces and persists a complete meal plan, then triggers
// shopping list construction. Every constraint failure happens before any write.
func (s *PlanService) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (dto *inbound.PlanDTO, err error) {
	ctx, span := tracer.Start(ctx, "planner.GeneratePlan")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := s.resolveRequest(cmd)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("owner_id", cmd.OwnerID.String()),
		attribute.Int("days", req.days),
		attribute.Int("meals_per_day", len(req.slots)),
	)

	s.logger.Info("Generating meal plan",
		zap.String("owner_id", cmd.OwnerID.String()),
		zap.Int("days", req.days),
		zap.Int("meals_per_day", len(req.slots)),
	)

	owner, err := s.users.FindByID(ctx, cmd.OwnerID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewUserNotFoundError(cmd.OwnerID.String())
		}
		return nil, errors.NewDatabaseError("find user", err)
	}

	entitlement := s.policy.For(owner.Tier())
	if req.days > entitlement.MaxPlanDays {
		s.metrics.AllocationFailed("limit_exceeded")
		return nil, errors.NewLimitExceededError(req.days, entitlement.MaxPlanDays)
	}

	recipes, err := s.catalog.FindRecipes(ctx, outbound.CatalogFilter{Dietary: cmd.Dietary})
	if err != nil {
		return nil, errors.NewDatabaseError("query recipe catalog", err)
	}
	if len(recipes) == 0 {
		s.metrics.AllocationFailed(errors.ReasonNoRecipesAvailable)
		return nil, errors.NewNoRecipesAvailableError()
	}

	dislikes := mealplan.ParseDislikes(cmd.Dislikes)
	recipes = FilterDislikes(recipes, dislikes)
	if len(recipes) == 0 {
		s.metrics.AllocationFailed(errors.ReasonNoRecipesMatchPreferences)
		return nil, errors.NewNoRecipesMatchPreferencesError(dislikes)
	}

	plan, err := mealplan.NewMealPlan(cmd.OwnerID, req.start, req.days)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	selector := s.selectorFor(cmd.TimePreferences, entitlement)
	if err := Allocate(plan, recipes, req.slots, req.servings, selector); err != nil {
		if errors.Is(err, errors.CodePreferenceConflict) {
			s.metrics.AllocationFailed(errors.Reason(err))
		}
		return nil, err
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, errors.NewDatabaseError("create meal plan", err)
	}

	dto = inbound.NewPlanDTO(plan)
	s.metrics.PlanGenerated(plan.Days(), len(plan.Items()))

	listID, err := s.lists.BuildAndStore(ctx, plan.ID())
	if err != nil {
		s.logger.Error("Shopping list build failed after plan generation",
			zap.String("plan_id", plan.ID().String()),
			zap.Error(err),
		)
	} else {
		dto.ShoppingListID = &listID
	}

	s.logger.Info("Meal plan generated",
		zap.String("plan_id", plan.ID().String()),
		zap.Int("items", len(plan.Items())),
	)

	return dto, nil
}

// GetPlan returns a plan owned by the caller
func (s *PlanService) GetPlan(ctx context.Context, ownerID, planID uuid.UUID) (*inbound.PlanDTO, error) {
	plan, err := s.loadOwned(ctx, ownerID, planID, "view this meal plan")
	if err != nil {
		return nil, err
	}
	return inbound.NewPlanDTO(plan), nil
}

// DeletePlan removes a plan owned by the caller together with its shopping list
func (s *PlanService) DeletePlan(ctx context.Context, ownerID, planID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, planID, "delete this meal plan"); err != nil {
		return err
	}

	if err := s.plans.Delete(ctx, planID); err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return errors.NewPlanNotFoundError(planID.String())
		}
		return errors.NewDatabaseError("delete meal plan", err)
	}

	s.logger.Info("Meal plan deleted", zap.String("plan_id", planID.String()))
	return nil
}

func (s *PlanService) loadOwned(ctx context.Context, ownerID, planID uuid.UUID, action string) (*mealplan.MealPlan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewPlanNotFoundError(planID.String())
		}
		return nil, errors.NewDatabaseError("find meal plan", err)
	}
	if !plan.IsOwnedBy(ownerID) {
		return nil, errors.NewForbiddenError(action)
	}
	return plan, nil
}

type resolvedRequest struct {
	start    time.Time
	days     int
	slots    []mealplan.MealSlot
	servings int
}

func (s *PlanService) resolveRequest(cmd inbound.GeneratePlanCommand) (resolvedRequest, error) {
	if cmd.OwnerID == uuid.Nil {
		return resolvedRequest{}, errors.NewValidationError("owner is required")
	}

	req := resolvedRequest{days: cmd.Days, servings: cmd.HouseholdSize}
	if req.days == 0 {
		req.days = s.options.DefaultDays
	}
	if req.days < 1 {
		return resolvedRequest{}, errors.NewValidationError(mealplan.ErrInvalidDays.Error())
	}
	if req.servings <= 0 {
		req.servings = s.options.DefaultHouseholdSize
	}

	mealsPerDay := cmd.MealsPerDay
	if mealsPerDay == 0 {
		mealsPerDay = s.options.DefaultMealsPerDay
	}
	slots, err := mealplan.SlotsForMealsPerDay(mealsPerDay)
	if err != nil {
		return resolvedRequest{}, errors.NewValidationError(err.Error())
	}
	req.slots = slots

	if cmd.StartDate != nil {
		req.start = *cmd.StartDate
	} else {
		req.start = mealplan.NextMonday(s.now())
	}
	return req, nil
}

// selectorFor builds the selection chain. Time preferences are ignored for
// callers whose tier does not unlock them.
func (s *PlanService) selectorFor(prefs *inbound.TimePreferences, entitlement user.Entitlement) Selector {
	selector := RandomSelector(s.shuffler)
	if prefs == nil {
		return selector
	}
	if !entitlement.TimePreferences {
		s.logger.Debug("Ignoring time preferences for non-entitled caller")
		return selector
	}

	if prefs.WeeklyBudgetMinutes != nil {
		selector = ShortestTimeSelector()
	}
	if prefs.WeeknightMaxMinutes != nil {
		selector = WeeknightCapSelector(*prefs.WeeknightMaxMinutes, selector)
	}
	return selector
}
