package gorm

import (
	"context"

	"github.com/alchemorsel/mealplan/internal/domain/shopping"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"gorm.io/gorm"
)

// PriceBaselineRepository reads store reference pricing
type PriceBaselineRepository struct {
	db *gorm.DB
}

// NewPriceBaselineRepository creates a new baseline repository
func NewPriceBaselineRepository(db *gorm.DB) outbound.PriceBaselineReader {
	return &PriceBaselineRepository{db: db}
}

// ListBaselines returns every baseline ordered by category and store
func (r *PriceBaselineRepository) ListBaselines(ctx context.Context) ([]shopping.PriceBaseline, error) {
	var models []PriceBaselineModel
	if err := r.db.WithContext(ctx).Order("category ASC").Order("store ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	baselines := make([]shopping.PriceBaseline, 0, len(models))
	for i := range models {
		baselines = append(baselines, toDomainBaseline(&models[i]))
	}
	return baselines, nil
}
