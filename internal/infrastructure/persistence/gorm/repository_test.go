package gorm

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RepositoryTestSuite runs the GORM repositories against a file-backed SQLite database
type RepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	catalog     *CatalogRepository
	plans       outbound.PlanStore
	lists       outbound.ShoppingListStore
	users       outbound.UserRepository
	baselines   outbound.PriceBaselineReader
	ingredients *testutils.IngredientFactory
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()

	path := filepath.Join(suite.T().TempDir(), "mealplan.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(AllModels()...))

	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.T().Cleanup(func() { sqlDB.Close() })

	suite.db = db
	suite.catalog = NewCatalogRepository(db)
	suite.plans = NewPlanRepository(db)
	suite.lists = NewShoppingListRepository(db)
	suite.users = NewUserRepository(db)
	suite.baselines = NewPriceBaselineRepository(db)
	suite.ingredients = testutils.NewIngredientFactory()
}

func (suite *RepositoryTestSuite) saveRecipe(r mealplan.Recipe) mealplan.Recipe {
	suite.Require().NoError(suite.catalog.SaveRecipe(suite.ctx, r))
	return r
}

func (suite *RepositoryTestSuite) TestCatalog_FindRecipes() {
	suite.Run("OrdersByTitleAndLoadsIngredients", func() {
		// Arrange
		suite.saveRecipe(testutils.NewRecipeBuilder().WithTitle("Ziti bake").WithTotalMinutes(40).
			WithIngredient(suite.ingredients.Line("Ziti", "pantry", 500, "g")).
			WithIngredient(suite.ingredients.Line("Mozzarella", "dairy", 200, "g")).
			Build())
		suite.saveRecipe(testutils.NewRecipeBuilder().WithTitle("Apple porridge").
			WithSlots(mealplan.SlotBreakfast).WithPrepCook(5, 10).Vegetarian().
			WithIngredient(suite.ingredients.Line("Oats", "pantry", 80, "g")).
			Build())

		// Act
		recipes, err := suite.catalog.FindRecipes(suite.ctx, outbound.CatalogFilter{})

		// Assert
		suite.Require().NoError(err)
		suite.Require().Len(recipes, 2)
		suite.Equal("Apple porridge", recipes[0].Title)
		suite.Equal([]mealplan.MealSlot{mealplan.SlotBreakfast}, recipes[0].MealSlots)
		suite.Nil(recipes[0].TotalMinutes)
		suite.Equal(5, *recipes[0].PrepMinutes)
		total, ok := recipes[0].TotalTime()
		suite.True(ok)
		suite.Equal(15, total)

		suite.Equal("Ziti bake", recipes[1].Title)
		suite.Require().Len(recipes[1].Ingredients, 2)
		suite.Equal("Ziti", recipes[1].Ingredients[0].Name)
		suite.Equal("pantry", recipes[1].Ingredients[0].Category)
		suite.Equal("Mozzarella", recipes[1].Ingredients[1].Name)
		suite.Equal(suite.ingredients.ID("Mozzarella"), recipes[1].Ingredients[1].IngredientID)
	})

	suite.Run("AppliesDietaryFlags", func() {
		// Arrange
		suite.saveRecipe(testutils.NewRecipeBuilder().WithTitle("Vegan curry").Vegetarian().DairyFree().Build())
		suite.saveRecipe(testutils.NewRecipeBuilder().WithTitle("Cheese omelette").Vegetarian().Build())

		// Act
		both, err := suite.catalog.FindRecipes(suite.ctx, outbound.CatalogFilter{
			Dietary: mealplan.DietaryFlags{Vegetarian: true, DairyFree: true},
		})

		// Assert
		suite.Require().NoError(err)
		titles := make([]string, 0, len(both))
		for _, r := range both {
			titles = append(titles, r.Title)
		}
		suite.Contains(titles, "Vegan curry")
		suite.NotContains(titles, "Cheese omelette")
		suite.NotContains(titles, "Ziti bake")
	})
}

func (suite *RepositoryTestSuite) storePlan(owner uuid.UUID) *mealplan.MealPlan {
	breakfast := suite.saveRecipe(testutils.NewRecipeBuilder().WithTitle("Toast").WithSlots(mealplan.SlotBreakfast).
		WithIngredient(suite.ingredients.Line("Bread", "bakery", 2, "slice")).Build())
	dinner := suite.saveRecipe(testutils.NewRecipeBuilder().WithTitle("Rice bowl").
		WithIngredient(suite.ingredients.Line("Rice", "pantry", 200, "g")).Build())

	plan, err := mealplan.NewMealPlan(owner, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), 2)
	suite.Require().NoError(err)
	for day := 0; day < 2; day++ {
		suite.Require().NoError(plan.Assign(day, mealplan.SlotDinner, dinner, 3))
		suite.Require().NoError(plan.Assign(day, mealplan.SlotBreakfast, breakfast, 3))
	}
	suite.Require().NoError(suite.plans.Create(suite.ctx, plan))
	return plan
}

func (suite *RepositoryTestSuite) TestPlan_CreateFindDelete() {
	// Arrange
	owner := uuid.New()
	plan := suite.storePlan(owner)

	// Act
	loaded, err := suite.plans.FindByID(suite.ctx, plan.ID())

	// Assert
	suite.Require().NoError(err)
	suite.Equal(owner, loaded.OwnerID())
	suite.Equal(2, loaded.Days())
	suite.True(loaded.StartDate().Equal(plan.StartDate()))

	items := loaded.Items()
	suite.Require().Len(items, 4)
	suite.Equal(0, items[0].DayIndex)
	suite.Equal(mealplan.SlotBreakfast, items[0].Slot)
	suite.Equal(mealplan.SlotDinner, items[1].Slot)
	suite.Equal(1, items[2].DayIndex)
	suite.Equal("Rice bowl", items[1].RecipeTitle)
	suite.Require().NotNil(items[1].Recipe)
	suite.Equal("Rice", items[1].Recipe.Ingredients[0].Name)
	suite.Equal(3, items[1].Servings)

	// Delete cascades to the shopping list
	list := shopping.NewList(plan.ID(), owner, []shopping.Item{{Name: "Rice", Quantity: 600, Unit: "g"}})
	suite.Require().NoError(suite.lists.Create(suite.ctx, list))

	suite.Require().NoError(suite.plans.Delete(suite.ctx, plan.ID()))

	_, err = suite.plans.FindByID(suite.ctx, plan.ID())
	suite.ErrorIs(err, outbound.ErrNotFound)
	_, err = suite.lists.FindByPlanID(suite.ctx, plan.ID())
	suite.ErrorIs(err, outbound.ErrNotFound)
	_, _, err = suite.lists.FindItem(suite.ctx, list.Items[0].ID)
	suite.ErrorIs(err, outbound.ErrNotFound)

	var remaining int64
	suite.Require().NoError(suite.db.Model(&MealPlanItemModel{}).Count(&remaining).Error)
	suite.Zero(remaining)

	suite.ErrorIs(suite.plans.Delete(suite.ctx, plan.ID()), outbound.ErrNotFound)
}

func (suite *RepositoryTestSuite) TestPlan_CreateIsAtomic() {
	// Arrange
	plan := suite.storePlan(uuid.New())
	var before int64
	suite.Require().NoError(suite.db.Model(&MealPlanItemModel{}).Count(&before).Error)

	// A second plan whose item IDs collide with the stored one fails as a whole
	clash := mealplan.Rehydrate(uuid.New(), uuid.New(), plan.StartDate(), plan.Days(), plan.Items(), time.Now())

	// Act
	err := suite.plans.Create(suite.ctx, clash)

	// Assert
	suite.Require().Error(err)
	_, err = suite.plans.FindByID(suite.ctx, clash.ID())
	suite.ErrorIs(err, outbound.ErrNotFound)

	var after int64
	suite.Require().NoError(suite.db.Model(&MealPlanItemModel{}).Count(&after).Error)
	suite.Equal(before, after)
}

func (suite *RepositoryTestSuite) TestShoppingList_Lifecycle() {
	planID, owner := uuid.New(), uuid.New()
	tomatoID := uuid.New()
	list := shopping.NewList(planID, owner, []shopping.Item{
		{IngredientID: &tomatoID, Name: "Tomato", Quantity: 700, Unit: "g", Category: "produce"},
		{IngredientID: &tomatoID, Name: "Tomato", Quantity: 2, Unit: "pcs", Category: "Produce"},
		{Name: "Olive oil", Quantity: 29.5735, Unit: "ml"},
	})

	suite.Run("Create_SecondListForPlanConflicts", func() {
		suite.Require().NoError(suite.lists.Create(suite.ctx, list))

		dup := shopping.NewList(planID, owner, nil)
		err := suite.lists.Create(suite.ctx, dup)
		suite.ErrorIs(err, outbound.ErrConflict)
	})

	suite.Run("Find_PreservesItemOrder", func() {
		byPlan, err := suite.lists.FindByPlanID(suite.ctx, planID)
		suite.Require().NoError(err)
		suite.Equal(list.ID, byPlan.ID)
		suite.Require().Len(byPlan.Items, 3)
		suite.Equal("Tomato", byPlan.Items[0].Name)
		suite.Equal(2.0, byPlan.Items[1].Quantity)
		suite.Nil(byPlan.Items[2].IngredientID)
		suite.Equal(29.6, byPlan.Items[2].Quantity)

		byID, err := suite.lists.FindByID(suite.ctx, list.ID)
		suite.Require().NoError(err)
		suite.Equal(byPlan.Items, byID.Items)
	})

	suite.Run("FindItem_ReturnsOwner", func() {
		item, ownerID, err := suite.lists.FindItem(suite.ctx, list.Items[0].ID)
		suite.Require().NoError(err)
		suite.Equal(owner, ownerID)
		suite.Equal(list.ID, item.ListID)
		suite.Require().NotNil(item.IngredientID)
		suite.Equal(tomatoID, *item.IngredientID)
	})

	suite.Run("SetItemChecked", func() {
		suite.Require().NoError(suite.lists.SetItemChecked(suite.ctx, list.Items[0].ID, true))
		item, _, err := suite.lists.FindItem(suite.ctx, list.Items[0].ID)
		suite.Require().NoError(err)
		suite.True(item.Checked)

		suite.ErrorIs(suite.lists.SetItemChecked(suite.ctx, uuid.New(), true), outbound.ErrNotFound)
	})

	suite.Run("SetCategoryChecked_MatchesCaseInsensitively", func() {
		n, err := suite.lists.SetCategoryChecked(suite.ctx, list.ID, "PRODUCE", true)
		suite.Require().NoError(err)
		suite.Equal(2, n)

		n, err = suite.lists.SetCategoryChecked(suite.ctx, list.ID, "Uncategorized", true)
		suite.Require().NoError(err)
		suite.Equal(1, n)

		_, err = suite.lists.SetCategoryChecked(suite.ctx, uuid.New(), "produce", true)
		suite.ErrorIs(err, outbound.ErrNotFound)
	})

	suite.Run("AddItem_AppendsAtEnd", func() {
		item := &shopping.Item{ID: uuid.New(), ListID: list.ID, Name: "Coffee", Quantity: 250, Unit: "g", Category: shopping.Uncategorized}
		suite.Require().NoError(suite.lists.AddItem(suite.ctx, item))

		loaded, err := suite.lists.FindByID(suite.ctx, list.ID)
		suite.Require().NoError(err)
		suite.Require().Len(loaded.Items, 4)
		suite.Equal("Coffee", loaded.Items[3].Name)
		suite.True(loaded.Items[3].IsAdhoc())

		orphan := &shopping.Item{ID: uuid.New(), ListID: uuid.New(), Name: "Tea", Quantity: 1}
		suite.ErrorIs(suite.lists.AddItem(suite.ctx, orphan), outbound.ErrNotFound)
	})
}

func (suite *RepositoryTestSuite) TestShoppingList_ConcurrentCreateYieldsOneList() {
	// Arrange
	planID, owner := uuid.New(), uuid.New()
	const workers = 6

	var wg sync.WaitGroup
	errs := make([]error, workers)

	// Act
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list := shopping.NewList(planID, owner, []shopping.Item{{Name: fmt.Sprintf("item-%d", i), Quantity: 1}})
			errs[i] = suite.lists.Create(suite.ctx, list)
		}(i)
	}
	wg.Wait()

	// Assert
	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		suite.True(errors.Is(err, outbound.ErrConflict), "unexpected error: %v", err)
	}
	suite.Equal(1, created)

	var count int64
	suite.Require().NoError(suite.db.Model(&ShoppingListModel{}).Where("plan_id = ?", planID).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *RepositoryTestSuite) TestUsers() {
	users := testutils.NewUserFactory(7)
	premium := users.Premium()

	suite.Require().NoError(suite.users.Create(suite.ctx, premium))

	loaded, err := suite.users.FindByID(suite.ctx, premium.ID())
	suite.Require().NoError(err)
	suite.Equal(premium.Email(), loaded.Email())
	suite.Equal(premium.Tier(), loaded.Tier())

	_, err = suite.users.FindByID(suite.ctx, uuid.New())
	suite.ErrorIs(err, outbound.ErrNotFound)

	suite.ErrorIs(suite.users.Create(suite.ctx, premium), outbound.ErrConflict)
}

func (suite *RepositoryTestSuite) TestBaselines() {
	suite.Require().NoError(suite.db.Create(&[]PriceBaselineModel{
		{Category: "produce", Store: "B-Mart", Unit: "kg", PricePerUnit: 2.5},
		{Category: "dairy", Store: "A-Mart", Unit: "l", PricePerUnit: 1.1},
		{Category: "produce", Store: "A-Mart", Unit: "kg", PricePerUnit: 3},
	}).Error)

	baselines, err := suite.baselines.ListBaselines(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal([]shopping.PriceBaseline{
		{Category: "dairy", Store: "A-Mart", Unit: "l", PricePerUnit: 1.1},
		{Category: "produce", Store: "A-Mart", Unit: "kg", PricePerUnit: 3},
		{Category: "produce", Store: "B-Mart", Unit: "kg", PricePerUnit: 2.5},
	}, baselines)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
