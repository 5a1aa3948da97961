package handlers

import (
	"net/http"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/infrastructure/security"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanHandlers handles meal plan requests
type PlanHandlers struct {
	base
	plans    inbound.PlanService
	shopping inbound.ShoppingService
}

// NewPlanHandlers creates the plan handlers
func NewPlanHandlers(
	plans inbound.PlanService,
	shopping inbound.ShoppingService,
	validator *security.ValidationService,
	logger *zap.Logger,
) *PlanHandlers {
	return &PlanHandlers{
		base:     newBase(validator, logger.Named("plans_api")),
		plans:    plans,
		shopping: shopping,
	}
}

// DietaryRequest holds the hard dietary restrictions
type DietaryRequest struct {
	Vegetarian bool `json:"vegetarian"`
	DairyFree  bool `json:"dairy_free"`
}

// TimePreferencesRequest holds optional cooking-time limits
type TimePreferencesRequest struct {
	WeeknightMaxMinutes *int `json:"weeknight_max_minutes" validate:"omitempty,min=1,max=1440"`
	WeeklyBudgetMinutes *int `json:"weekly_budget_minutes" validate:"omitempty,min=1"`
}

// GeneratePlanRequest is the body of POST /plans. Omitted fields take the
// configured defaults.
type GeneratePlanRequest struct {
	StartDate       string                  `json:"start_date" validate:"omitempty,iso_date"`
	Days            int                     `json:"days" validate:"omitempty,min=1,max=366"`
	MealsPerDay     int                     `json:"meals_per_day" validate:"omitempty,min=1,max=3"`
	HouseholdSize   int                     `json:"household_size" validate:"omitempty,min=1,max=50"`
	Dietary         DietaryRequest          `json:"dietary"`
	Dislikes        string                  `json:"dislikes" validate:"max=1000"`
	TimePreferences *TimePreferencesRequest `json:"time_preferences"`
}

func (req GeneratePlanRequest) toCommand(owner uuid.UUID) inbound.GeneratePlanCommand {
	cmd := inbound.GeneratePlanCommand{OwnerID: owner}
	if req.StartDate != "" {
		// Already validated as iso_date
		start, _ := time.Parse(security.DateLayout, req.StartDate)
		cmd.StartDate = &start
	}
	cmd.Days = req.Days
	cmd.MealsPerDay = req.MealsPerDay
	cmd.HouseholdSize = req.HouseholdSize
	cmd.Dietary = mealplan.DietaryFlags{Vegetarian: req.Dietary.Vegetarian, DairyFree: req.Dietary.DairyFree}
	cmd.Dislikes = req.Dislikes
	if tp := req.TimePreferences; tp != nil {
		cmd.TimePreferences = &inbound.TimePreferences{
			WeeknightMaxMinutes: tp.WeeknightMaxMinutes,
			WeeklyBudgetMinutes: tp.WeeklyBudgetMinutes,
		}
	}
	return cmd
}

// GeneratePlan handles POST /api/v1/plans
func (h *PlanHandlers) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req GeneratePlanRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	plan, err := h.plans.GeneratePlan(r.Context(), req.toCommand(owner))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/plans/"+plan.ID.String())
	h.writeJSON(w, http.StatusCreated, plan)
}

// GetPlan handles GET /api/v1/plans/{planID}
func (h *PlanHandlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	planID, err := pathID(r, "planID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	plan, err := h.plans.GetPlan(r.Context(), owner, planID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, plan)
}

// DeletePlan handles DELETE /api/v1/plans/{planID}
func (h *PlanHandlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	planID, err := pathID(r, "planID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.plans.DeletePlan(r.Context(), owner, planID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BuildShoppingList handles POST /api/v1/plans/{planID}/shopping-list.
// Building is idempotent, so this also recovers a list whose build failed
// during plan generation.
func (h *PlanHandlers) BuildShoppingList(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	planID, err := pathID(r, "planID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Owner check happens on the plan before building
	if _, err := h.plans.GetPlan(r.Context(), owner, planID); err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.shopping.BuildAndStore(r.Context(), planID); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.shopping.GetForPlan(r.Context(), owner, planID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// GetShoppingList handles GET /api/v1/plans/{planID}/shopping-list
func (h *PlanHandlers) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	planID, err := pathID(r, "planID")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.shopping.GetForPlan(r.Context(), owner, planID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}
