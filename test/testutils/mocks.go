// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// RecordingMetrics captures planning metric calls
type RecordingMetrics struct {
	mu sync.Mutex

	Generated      int
	Failures       map[string]int
	ListsBuilt     int
	ListConflicts  int
	UnitMismatches int
	Estimates      map[string]int
}

// NewRecordingMetrics creates an empty recorder
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Failures:  make(map[string]int),
		Estimates: make(map[string]int),
	}
}

func (m *RecordingMetrics) PlanGenerated(days, items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Generated++
}

func (m *RecordingMetrics) AllocationFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures[reason]++
}

func (m *RecordingMetrics) ShoppingListBuilt(items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListsBuilt++
}

func (m *RecordingMetrics) ShoppingListConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListConflicts++
}

func (m *RecordingMetrics) UnitMismatch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnitMismatches++
}

func (m *RecordingMetrics) BudgetEstimated(confidence string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Estimates[confidence]++
}

// FailureCount returns how often a reason was recorded
func (m *RecordingMetrics) FailureCount(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Failures[reason]
}

// MockListBuilder provides a mock shopping list builder
type MockListBuilder struct {
	mock.Mock
}

// BuildAndStore records the call
func (m *MockListBuilder) BuildAndStore(ctx context.Context, planID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockPlanStore provides a mock implementation of PlanStore
type MockPlanStore struct {
	mock.Mock
}

// Create creates a plan
func (m *MockPlanStore) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// FindByID finds a plan by ID
func (m *MockPlanStore) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mealplan.MealPlan), args.Error(1)
}

// Delete deletes a plan
func (m *MockPlanStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPriceBaselineReader provides a mock baseline reader
type MockPriceBaselineReader struct {
	mock.Mock
}

// ListBaselines returns baselines
func (m *MockPriceBaselineReader) ListBaselines(ctx context.Context) ([]shopping.PriceBaseline, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shopping.PriceBaseline), args.Error(1)
}

// MockPlanService provides a mock plan use case layer
type MockPlanService struct {
	mock.Mock
}

// GeneratePlan records the command
func (m *MockPlanService) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.PlanDTO, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.PlanDTO), args.Error(1)
}

// GetPlan returns a plan
func (m *MockPlanService) GetPlan(ctx context.Context, ownerID, planID uuid.UUID) (*inbound.PlanDTO, error) {
	args := m.Called(ctx, ownerID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.PlanDTO), args.Error(1)
}

// DeletePlan deletes a plan
func (m *MockPlanService) DeletePlan(ctx context.Context, ownerID, planID uuid.UUID) error {
	return m.Called(ctx, ownerID, planID).Error(0)
}

// MockShoppingService provides a mock shopping use case layer
type MockShoppingService struct {
	mock.Mock
}

// BuildAndStore records the call
func (m *MockShoppingService) BuildAndStore(ctx context.Context, planID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// GetForPlan returns a list
func (m *MockShoppingService) GetForPlan(ctx context.Context, ownerID, planID uuid.UUID) (*inbound.ShoppingListDTO, error) {
	args := m.Called(ctx, ownerID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.ShoppingListDTO), args.Error(1)
}

// ToggleItemChecked returns the flipped item
func (m *MockShoppingService) ToggleItemChecked(ctx context.Context, ownerID, itemID uuid.UUID) (*inbound.ShoppingItemDTO, error) {
	args := m.Called(ctx, ownerID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.ShoppingItemDTO), args.Error(1)
}

// UpdateCategoryChecked returns the updated count
func (m *MockShoppingService) UpdateCategoryChecked(ctx context.Context, cmd inbound.UpdateCategoryCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

// AddAdhocItem returns the new item
func (m *MockShoppingService) AddAdhocItem(ctx context.Context, cmd inbound.AddItemCommand) (*inbound.ShoppingItemDTO, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.ShoppingItemDTO), args.Error(1)
}

// MockBudgetService provides a mock budget use case layer
type MockBudgetService struct {
	mock.Mock
}

// EstimateForList returns an estimate
func (m *MockBudgetService) EstimateForList(ctx context.Context, ownerID, listID uuid.UUID) (*inbound.BudgetEstimateDTO, error) {
	args := m.Called(ctx, ownerID, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.BudgetEstimateDTO), args.Error(1)
}
