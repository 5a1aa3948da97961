package mealplan

import "errors"

// Domain errors for meal plan construction

var (
	ErrInvalidDays        = errors.New("plan must cover at least one day")
	ErrInvalidMealsPerDay = errors.New("meals per day must be 1, 2 or 3")
	ErrUnknownMealSlot    = errors.New("unknown meal slot")
	ErrInvalidServings    = errors.New("servings must be greater than 0")

	ErrDayOutOfRange     = errors.New("day index outside plan horizon")
	ErrSlotNotApplicable = errors.New("recipe does not declare this meal slot")
	ErrDuplicateSlot     = errors.New("meal slot already assigned for this day")
	ErrIncompletePlan    = errors.New("plan is missing required meal slots")
)
