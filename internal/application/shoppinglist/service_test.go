package shoppinglist

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// ShoppingServiceTestSuite provides a test suite for shopping list operations
type ShoppingServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *memory.Database
	plans       outbound.PlanStore
	lists       outbound.ShoppingListStore
	metrics     *testutils.RecordingMetrics
	service     *ShoppingService
	ingredients *testutils.IngredientFactory
	owner       uuid.UUID
}

func (suite *ShoppingServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = memory.NewDatabase()
	suite.plans = memory.NewPlanRepository(suite.db)
	suite.lists = memory.NewShoppingListRepository(suite.db)
	suite.metrics = testutils.NewRecordingMetrics()
	suite.ingredients = testutils.NewIngredientFactory()
	suite.owner = uuid.New()
	suite.service = NewShoppingService(suite.plans, suite.lists, suite.metrics, DefaultRetryPolicy(), zap.NewNop())
	suite.service.sleep = func(context.Context, time.Duration) error { return nil }
}

// storePlan persists a two-day dinner plan: pasta then salad, each for 4 people
func (suite *ShoppingServiceTestSuite) storePlan() *mealplan.MealPlan {
	pasta := testutils.NewRecipeBuilder().WithTitle("Tomato pasta").
		WithIngredient(suite.ingredients.Line("Spaghetti", "pantry", 250, "g")).
		WithIngredient(suite.ingredients.Line("Tomato", "produce", 0.4, "kg")).
		WithIngredient(suite.ingredients.Line("Parmesan", "dairy", 30, "g")).
		Build()
	salad := testutils.NewRecipeBuilder().WithTitle("Tomato salad").
		WithIngredient(suite.ingredients.Line("Tomato", "produce", 300, "g")).
		WithIngredient(suite.ingredients.Line("Olive oil", "", 2, "tbsp")).
		Build()
	suite.db.AddRecipes(pasta, salad)

	plan, err := mealplan.NewMealPlan(suite.owner, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), plan.Assign(0, mealplan.SlotDinner, pasta, 4))
	require.NoError(suite.T(), plan.Assign(1, mealplan.SlotDinner, salad, 4))
	require.NoError(suite.T(), suite.plans.Create(suite.ctx, plan))
	return plan
}

func (suite *ShoppingServiceTestSuite) TestBuildAndStore() {
	plan := suite.storePlan()

	// Act
	listID, err := suite.service.BuildAndStore(suite.ctx, plan.ID())

	// Assert
	require.NoError(suite.T(), err)
	dto, err := suite.service.GetForPlan(suite.ctx, suite.owner, plan.ID())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), listID, dto.ID)

	type line struct {
		Name, Display, Category string
	}
	var got []line
	for _, item := range dto.Items {
		got = append(got, line{item.Name, item.Display, item.Category})
	}
	assert.Equal(suite.T(), []line{
		{"Parmesan", "60g", "dairy"},
		{"Spaghetti", "500g", "pantry"},
		{"Tomato", "1.4kg", "produce"},
		{"Olive oil", "59.1ml", "uncategorized"},
	}, got)
	assert.Equal(suite.T(), 1, suite.metrics.ListsBuilt)
}

func (suite *ShoppingServiceTestSuite) TestBuildAndStore_IsIdempotent() {
	plan := suite.storePlan()

	first, err := suite.service.BuildAndStore(suite.ctx, plan.ID())
	require.NoError(suite.T(), err)
	second, err := suite.service.BuildAndStore(suite.ctx, plan.ID())
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), first, second)
	assert.Equal(suite.T(), 1, suite.db.CountLists())
	assert.Equal(suite.T(), 1, suite.metrics.ListsBuilt)
}

func (suite *ShoppingServiceTestSuite) TestBuildAndStore_ConcurrentCallsProduceOneList() {
	plan := suite.storePlan()

	const workers = 8
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = suite.service.BuildAndStore(suite.ctx, plan.ID())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(suite.T(), errs[i])
		assert.Equal(suite.T(), ids[0], ids[i])
	}
	assert.Equal(suite.T(), 1, suite.db.CountLists())
}

func (suite *ShoppingServiceTestSuite) TestBuildAndStore_ReadRetries() {
	plan := suite.storePlan()
	stored, err := suite.plans.FindByID(suite.ctx, plan.ID())
	require.NoError(suite.T(), err)

	var waits []time.Duration
	newService := func(store outbound.PlanStore) *ShoppingService {
		waits = nil
		svc := NewShoppingService(store, suite.lists, suite.metrics, DefaultRetryPolicy(), zap.NewNop())
		svc.sleep = func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}
		return svc
	}

	suite.Run("FreshWrite_ShouldSucceedOnThirdAttempt", func() {
		store := &testutils.MockPlanStore{}
		store.On("FindByID", mock.Anything, plan.ID()).Return(nil, outbound.ErrNotFound).Twice()
		store.On("FindByID", mock.Anything, plan.ID()).Return(stored, nil).Once()

		_, err := newService(store).BuildAndStore(suite.ctx, plan.ID())

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, waits)
		store.AssertNumberOfCalls(suite.T(), "FindByID", 3)
	})

	suite.Run("PersistentAbsence_ShouldBePlanNotFound", func() {
		store := &testutils.MockPlanStore{}
		missing := uuid.New()
		store.On("FindByID", mock.Anything, missing).Return(nil, outbound.ErrNotFound)

		_, err := newService(store).BuildAndStore(suite.ctx, missing)

		assert.True(suite.T(), errors.Is(err, errors.CodePlanNotFound))
		store.AssertNumberOfCalls(suite.T(), "FindByID", 3)
	})

	suite.Run("PersistentFailure_ShouldBeTransient", func() {
		store := &testutils.MockPlanStore{}
		broken := uuid.New()
		store.On("FindByID", mock.Anything, broken).Return(nil, stderrors.New("connection reset"))

		_, err := newService(store).BuildAndStore(suite.ctx, broken)

		assert.True(suite.T(), errors.Is(err, errors.CodeTransientReadFailure))
		store.AssertNumberOfCalls(suite.T(), "FindByID", 3)
	})
}

func (suite *ShoppingServiceTestSuite) TestChecklistMutations() {
	plan := suite.storePlan()
	listID, err := suite.service.BuildAndStore(suite.ctx, plan.ID())
	require.NoError(suite.T(), err)
	dto, err := suite.service.GetForPlan(suite.ctx, suite.owner, plan.ID())
	require.NoError(suite.T(), err)
	tomato := dto.Items[2]
	stranger := uuid.New()

	suite.Run("Toggle_ShouldFlipCheckedState", func() {
		item, err := suite.service.ToggleItemChecked(suite.ctx, suite.owner, tomato.ID)
		require.NoError(suite.T(), err)
		assert.True(suite.T(), item.Checked)

		item, err = suite.service.ToggleItemChecked(suite.ctx, suite.owner, tomato.ID)
		require.NoError(suite.T(), err)
		assert.False(suite.T(), item.Checked)
	})

	suite.Run("Toggle_ShouldRejectOtherUsers", func() {
		_, err := suite.service.ToggleItemChecked(suite.ctx, stranger, tomato.ID)
		assert.True(suite.T(), errors.Is(err, errors.CodeForbidden))

		_, err = suite.service.ToggleItemChecked(suite.ctx, suite.owner, uuid.New())
		assert.True(suite.T(), errors.Is(err, errors.CodeNotFound))
	})

	suite.Run("AddAdhocItem_ShouldNormalizeAndJoinUncategorized", func() {
		item, err := suite.service.AddAdhocItem(suite.ctx, inbound.AddItemCommand{
			OwnerID: suite.owner, ListID: listID, Name: " Coffee ", Quantity: 0.25, Unit: "KG",
		})
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "Coffee", item.Name)
		assert.Equal(suite.T(), 250.0, item.Quantity)
		assert.Equal(suite.T(), "g", item.Unit)
		assert.Nil(suite.T(), item.IngredientID)
		assert.Equal(suite.T(), "uncategorized", item.Category)
	})

	suite.Run("AddAdhocItem_ShouldValidate", func() {
		_, err := suite.service.AddAdhocItem(suite.ctx, inbound.AddItemCommand{OwnerID: suite.owner, ListID: listID})
		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))

		_, err = suite.service.AddAdhocItem(suite.ctx, inbound.AddItemCommand{OwnerID: stranger, ListID: listID, Name: "Tea"})
		assert.True(suite.T(), errors.Is(err, errors.CodeForbidden))

		_, err = suite.service.AddAdhocItem(suite.ctx, inbound.AddItemCommand{OwnerID: suite.owner, ListID: uuid.New(), Name: "Tea"})
		assert.True(suite.T(), errors.Is(err, errors.CodeShoppingListNotFound))
	})

	suite.Run("UpdateCategory_ShouldTouchWholeCategory", func() {
		affected, err := suite.service.UpdateCategoryChecked(suite.ctx, inbound.UpdateCategoryCommand{
			OwnerID: suite.owner, ListID: listID, Category: "Uncategorized", Checked: true,
		})
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), 2, affected)

		dto, err := suite.service.GetForPlan(suite.ctx, suite.owner, plan.ID())
		require.NoError(suite.T(), err)
		for _, item := range dto.Items {
			assert.Equal(suite.T(), item.Category == "uncategorized", item.Checked, item.Name)
		}
	})

	suite.Run("UpdateCategory_ShouldRejectOtherUsers", func() {
		_, err := suite.service.UpdateCategoryChecked(suite.ctx, inbound.UpdateCategoryCommand{
			OwnerID: stranger, ListID: listID, Category: "produce", Checked: true,
		})
		assert.True(suite.T(), errors.Is(err, errors.CodeForbidden))
	})

	suite.Run("GetForPlan_ShouldRejectOtherUsers", func() {
		_, err := suite.service.GetForPlan(suite.ctx, stranger, plan.ID())
		assert.True(suite.T(), errors.Is(err, errors.CodeForbidden))

		_, err = suite.service.GetForPlan(suite.ctx, suite.owner, uuid.New())
		assert.True(suite.T(), errors.Is(err, errors.CodeShoppingListNotFound))
	})
}

func TestShoppingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShoppingServiceTestSuite))
}
