package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeLimitExceeded:        http.StatusTooManyRequests,
		CodePreferenceConflict:   http.StatusUnprocessableEntity,
		CodePlanNotFound:         http.StatusNotFound,
		CodeShoppingListNotFound: http.StatusNotFound,
		CodeUserNotFound:         http.StatusNotFound,
		CodeForbidden:            http.StatusForbidden,
		CodeTransientReadFailure: http.StatusServiceUnavailable,
		CodeDatabaseError:        http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, NewAppError(code, "m", "").StatusCode(), code)
	}
}

func TestIsAndReasonThroughWrapping(t *testing.T) {
	err := fmt.Errorf("generate: %w", NewNoRecipesForSlotError("breakfast"))

	assert.True(t, Is(err, CodePreferenceConflict))
	assert.Equal(t, ReasonNoRecipesForSlot, Reason(err))
	assert.Equal(t, CodePreferenceConflict, GetCode(err))
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
}

func TestWrapKeepsAppError(t *testing.T) {
	original := NewLimitExceededError(7, 3)
	assert.Same(t, original, Wrap(original, "ignored"))

	cause := stderrors.New("boom")
	wrapped := Wrap(cause, "failed")
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, Wrap(nil, "nothing"))
}
