package budget

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/alchemorsel/mealplan/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/alchemorsel/mealplan/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleItems() []shopping.Item {
	return []shopping.Item{
		{Name: "Chicken", Category: "Meat", Quantity: 1000, Unit: "g"},
		{Name: "Milk", Category: "dairy", Quantity: 500, Unit: "ml"},
		{Name: "Saffron", Category: "spices", Quantity: 1, Unit: "g"},
		{Name: "Eggs", Category: "dairy", Quantity: 6, Unit: "pcs"},
	}
}

func sampleBaselines() []shopping.PriceBaseline {
	return []shopping.PriceBaseline{
		testutils.Baseline("meat", "Discount", "kg", 10),
		testutils.Baseline("meat", "Deli", "g", 0.012),
		testutils.Baseline("dairy", "Discount", "l", 2),
		testutils.Baseline("dairy", "Discount", "pcs", 0.5),
		testutils.Baseline("produce", "Discount", "kg", 3),
	}
}

func TestEstimate(t *testing.T) {
	estimate := Estimate(sampleItems(), sampleBaselines())

	require.NotNil(t, estimate.Totals)
	assert.False(t, estimate.Locked)
	assert.InDelta(t, 14.0, estimate.Totals.Cheap, 0.001)
	assert.InDelta(t, 15.0, estimate.Totals.Standard, 0.001)
	assert.InDelta(t, 16.0, estimate.Totals.Premium, 0.001)
	assert.Equal(t, 1, *estimate.MissingItemCount)
	assert.Equal(t, ConfidenceMedium, estimate.Confidence)
}

func TestEstimate_Confidence(t *testing.T) {
	items := sampleItems()

	t.Run("NothingMissing_IsHigh", func(t *testing.T) {
		estimate := Estimate(items[:2], sampleBaselines())
		assert.Equal(t, 0, *estimate.MissingItemCount)
		assert.Equal(t, ConfidenceHigh, estimate.Confidence)
	})

	t.Run("HalfMissing_IsLow", func(t *testing.T) {
		estimate := Estimate(items[1:3], sampleBaselines())
		assert.Equal(t, 1, *estimate.MissingItemCount)
		assert.Equal(t, ConfidenceLow, estimate.Confidence)
	})

	t.Run("NoBaselines_IsLowWithZeroTotals", func(t *testing.T) {
		estimate := Estimate(items, nil)
		assert.Equal(t, 4, *estimate.MissingItemCount)
		assert.Equal(t, 0.0, estimate.Totals.Standard)
		assert.Equal(t, ConfidenceLow, estimate.Confidence)
	})

	t.Run("EmptyList_IsHigh", func(t *testing.T) {
		estimate := Estimate(nil, sampleBaselines())
		assert.Equal(t, ConfidenceHigh, estimate.Confidence)
	})
}

func TestEstimate_UnitMustMatch(t *testing.T) {
	items := []shopping.Item{{Name: "Cream", Category: "dairy", Quantity: 200, Unit: "g"}}

	estimate := Estimate(items, sampleBaselines())

	assert.Equal(t, 1, *estimate.MissingItemCount)
}

func TestBudgetService_EstimateForList(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDatabase()
	db.AddBaselines(sampleBaselines()...)
	users := memory.NewUserRepository(db)
	lists := memory.NewShoppingListRepository(db)
	metrics := testutils.NewRecordingMetrics()

	factory := testutils.NewUserFactory(7)
	premium, free := factory.Premium(), factory.Free()
	require.NoError(t, users.Create(ctx, premium))
	require.NoError(t, users.Create(ctx, free))

	premiumList := shopping.NewList(uuid.New(), premium.ID(), sampleItems())
	freeList := shopping.NewList(uuid.New(), free.ID(), sampleItems())
	require.NoError(t, lists.Create(ctx, premiumList))
	require.NoError(t, lists.Create(ctx, freeList))

	service := NewBudgetService(lists, users, memory.NewPriceBaselineRepository(db), user.DefaultPolicy(), metrics, zap.NewNop())

	t.Run("Premium_GetsEstimate", func(t *testing.T) {
		estimate, err := service.EstimateForList(ctx, premium.ID(), premiumList.ID)
		require.NoError(t, err)
		assert.False(t, estimate.Locked)
		assert.InDelta(t, 15.0, estimate.Totals.Standard, 0.001)
		assert.Equal(t, 1, metrics.Estimates[ConfidenceMedium])
	})

	t.Run("Free_GetsLockedPlaceholder", func(t *testing.T) {
		estimate, err := service.EstimateForList(ctx, free.ID(), freeList.ID)
		require.NoError(t, err)
		assert.True(t, estimate.Locked)
		assert.Nil(t, estimate.Totals)
		assert.Nil(t, estimate.MissingItemCount)
	})

	t.Run("OtherOwner_IsForbidden", func(t *testing.T) {
		_, err := service.EstimateForList(ctx, free.ID(), premiumList.ID)
		assert.True(t, errors.Is(err, errors.CodeForbidden))
	})

	t.Run("UnknownList_IsNotFound", func(t *testing.T) {
		_, err := service.EstimateForList(ctx, premium.ID(), uuid.New())
		assert.True(t, errors.Is(err, errors.CodeShoppingListNotFound))
	})

	t.Run("BaselineFailure_IsDatabaseError", func(t *testing.T) {
		reader := &testutils.MockPriceBaselineReader{}
		reader.On("ListBaselines", mock.Anything).Return(nil, stderrors.New("timeout"))
		failing := NewBudgetService(lists, users, reader, user.DefaultPolicy(), metrics, zap.NewNop())

		_, err := failing.EstimateForList(ctx, premium.ID(), premiumList.ID)
		assert.True(t, errors.Is(err, errors.CodeDatabaseError))
		reader.AssertExpectations(t)
	})
}
