package mealplan

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func intPtr(v int) *int { return &v }

// MealPlanTestSuite provides a test suite for the MealPlan aggregate
type MealPlanTestSuite struct {
	suite.Suite
	owner  uuid.UUID
	omelet Recipe
	curry  Recipe
}

func (suite *MealPlanTestSuite) SetupTest() {
	suite.owner = uuid.New()
	suite.omelet = Recipe{ID: uuid.New(), Title: "Omelet", MealSlots: []MealSlot{SlotBreakfast}, Servings: 1}
	suite.curry = Recipe{ID: uuid.New(), Title: "Curry", MealSlots: []MealSlot{SlotLunch, SlotDinner}, Servings: 4}
}

func (suite *MealPlanTestSuite) TestNewMealPlan() {
	suite.Run("ZeroDays_ShouldFail", func() {
		plan, err := NewMealPlan(suite.owner, time.Now(), 0)
		assert.ErrorIs(suite.T(), err, ErrInvalidDays)
		assert.Nil(suite.T(), plan)
	})

	suite.Run("StartDate_ShouldBeTruncatedToDay", func() {
		plan, err := NewMealPlan(suite.owner, time.Date(2026, 3, 2, 17, 45, 0, 0, time.UTC), 2)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), plan.StartDate())
		assert.Equal(suite.T(), time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), plan.DateOf(1))
		assert.True(suite.T(), plan.IsOwnedBy(suite.owner))
	})
}

func (suite *MealPlanTestSuite) TestAssign() {
	plan, err := NewMealPlan(suite.owner, time.Now(), 2)
	require.NoError(suite.T(), err)

	suite.Run("SlotNotDeclared_ShouldFail", func() {
		err := plan.Assign(0, SlotBreakfast, suite.curry, 2)
		assert.ErrorIs(suite.T(), err, ErrSlotNotApplicable)
	})

	suite.Run("DayOutOfRange_ShouldFail", func() {
		err := plan.Assign(2, SlotBreakfast, suite.omelet, 2)
		assert.ErrorIs(suite.T(), err, ErrDayOutOfRange)
	})

	suite.Run("DuplicateSlot_ShouldFail", func() {
		require.NoError(suite.T(), plan.Assign(0, SlotDinner, suite.curry, 2))
		err := plan.Assign(0, SlotDinner, suite.curry, 2)
		assert.ErrorIs(suite.T(), err, ErrDuplicateSlot)
	})

	suite.Run("ZeroServings_ShouldFail", func() {
		err := plan.Assign(1, SlotDinner, suite.curry, 0)
		assert.ErrorIs(suite.T(), err, ErrInvalidServings)
	})
}

func (suite *MealPlanTestSuite) TestEnsureComplete() {
	plan, err := NewMealPlan(suite.owner, time.Now(), 2)
	require.NoError(suite.T(), err)
	slots := []MealSlot{SlotBreakfast, SlotDinner}

	require.NoError(suite.T(), plan.Assign(0, SlotBreakfast, suite.omelet, 2))
	require.NoError(suite.T(), plan.Assign(0, SlotDinner, suite.curry, 2))
	require.NoError(suite.T(), plan.Assign(1, SlotBreakfast, suite.omelet, 2))
	assert.ErrorIs(suite.T(), plan.EnsureComplete(slots), ErrIncompletePlan)

	require.NoError(suite.T(), plan.Assign(1, SlotDinner, suite.curry, 2))
	assert.NoError(suite.T(), plan.EnsureComplete(slots))
	assert.Len(suite.T(), plan.Items(), 4)
}

func TestMealPlanTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanTestSuite))
}

func TestSlotsForMealsPerDay(t *testing.T) {
	one, err := SlotsForMealsPerDay(1)
	require.NoError(t, err)
	assert.Equal(t, []MealSlot{SlotDinner}, one)

	two, err := SlotsForMealsPerDay(2)
	require.NoError(t, err)
	assert.Equal(t, []MealSlot{SlotLunch, SlotDinner}, two)

	three, err := SlotsForMealsPerDay(3)
	require.NoError(t, err)
	assert.Equal(t, []MealSlot{SlotBreakfast, SlotLunch, SlotDinner}, three)

	_, err = SlotsForMealsPerDay(4)
	assert.ErrorIs(t, err, ErrInvalidMealsPerDay)
}

func TestParseDislikes(t *testing.T) {
	assert.Equal(t, []string{"mushroom", "blue cheese"}, ParseDislikes(" Mushroom, ,BLUE cheese ,"))
	assert.Empty(t, ParseDislikes(""))
	assert.Empty(t, ParseDislikes(" , "))
}

func TestRecipeContainsAny(t *testing.T) {
	r := Recipe{Ingredients: []RecipeIngredient{{Name: "Button Mushrooms"}, {Name: "Rice"}}}
	assert.True(t, r.ContainsAny([]string{"mushroom"}))
	assert.False(t, r.ContainsAny([]string{"olive"}))
	assert.False(t, Recipe{}.ContainsAny([]string{"anything"}))
}

func TestRecipeTotalTime(t *testing.T) {
	_, known := Recipe{}.TotalTime()
	assert.False(t, known)

	total, known := Recipe{PrepMinutes: intPtr(10), CookMinutes: intPtr(25)}.TotalTime()
	assert.True(t, known)
	assert.Equal(t, 35, total)

	total, _ = Recipe{TotalMinutes: intPtr(20), PrepMinutes: intPtr(10), CookMinutes: intPtr(25)}.TotalTime()
	assert.Equal(t, 20, total)
}

func TestNextMondayAndWeeknights(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, NextMonday(sunday))
	assert.Equal(t, monday.AddDate(0, 0, 7), NextMonday(monday))

	assert.True(t, IsWeeknight(monday))
	assert.True(t, IsWeeknight(monday.AddDate(0, 0, 4)))
	assert.False(t, IsWeeknight(monday.AddDate(0, 0, 5)))
	assert.False(t, IsWeeknight(sunday))
}

func TestParseMealSlot(t *testing.T) {
	slot, err := ParseMealSlot(" Lunch ")
	require.NoError(t, err)
	assert.Equal(t, SlotLunch, slot)

	_, err = ParseMealSlot("brunch")
	assert.ErrorIs(t, err, ErrUnknownMealSlot)
}
