package security

import (
	"testing"

	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sampleRequest struct {
	StartDate string  `json:"start_date" validate:"omitempty,iso_date"`
	Slot      string  `json:"slot" validate:"omitempty,meal_slot"`
	Days      int     `json:"days" validate:"omitempty,min=1,max=7"`
	Name      string  `json:"name" validate:"not_blank,ingredient"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
}

func TestValidationService_ValidateStruct(t *testing.T) {
	v := NewValidationService(zap.NewNop())

	t.Run("Valid", func(t *testing.T) {
		err := v.ValidateStruct(sampleRequest{StartDate: "2026-10-19", Slot: "Dinner", Days: 7, Name: "Coffee", Quantity: 0.25})
		assert.NoError(t, err)
	})

	t.Run("ReportsEveryFieldByJSONName", func(t *testing.T) {
		err := v.ValidateStruct(sampleRequest{StartDate: "19/10/2026", Slot: "brunch", Days: 9, Name: "  ", Quantity: 0})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeValidationFailed))

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		fields, ok := appErr.Metadata["fields"].(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "start_date must be a date in YYYY-MM-DD format", fields["start_date"])
		assert.Equal(t, "slot must be breakfast, lunch or dinner", fields["slot"])
		assert.Equal(t, "days must be at most 7", fields["days"])
		assert.Equal(t, "name is required", fields["name"])
		assert.Equal(t, "quantity must be greater than 0", fields["quantity"])
	})

	t.Run("RejectsMarkupInNames", func(t *testing.T) {
		err := v.ValidateStruct(sampleRequest{Name: "<script>alert(1)</script>", Quantity: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is not a valid ingredient name")
	})
}
