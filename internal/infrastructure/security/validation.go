package security

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/mealplan"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DateLayout is the request format for calendar dates
const DateLayout = "2006-01-02"

// ValidationService provides request validation
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a new validation service
func NewValidationService(logger *zap.Logger) *ValidationService {
	validate := validator.New()

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation rules
	_ = validate.RegisterValidation("meal_slot", validateMealSlot)
	_ = validate.RegisterValidation("iso_date", validateISODate)
	_ = validate.RegisterValidation("ingredient", validateIngredient)
	_ = validate.RegisterValidation("not_blank", validateNotBlank)

	return &ValidationService{
		logger:    logger.Named("validation"),
		validator: validate,
	}
}

// validateMealSlot accepts breakfast, lunch or dinner in any case
func validateMealSlot(fl validator.FieldLevel) bool {
	_, err := mealplan.ParseMealSlot(fl.Field().String())
	return err == nil
}

// validateISODate accepts YYYY-MM-DD
func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// validateIngredient rejects markup in free-text ingredient names
func validateIngredient(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" || len(name) > 200 {
		return false
	}
	lower := strings.ToLower(name)
	for _, danger := range []string{"<", ">", "javascript:"} {
		if strings.Contains(lower, danger) {
			return false
		}
	}
	return true
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateStruct validates a request and returns a VALIDATION_FAILED error
// carrying one message per failing field
func (v *ValidationService) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		v.logger.Warn("Unexpected validation failure", zap.Error(err))
		return errors.NewValidationError(err.Error())
	}

	fields := v.FieldErrors(validationErrors)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, fields[name])
	}
	appErr := errors.NewValidationError(strings.Join(messages, "; "))
	return appErr.WithMetadata("fields", fields)
}

// FieldErrors formats validation errors for API responses
func (v *ValidationService) FieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()

		switch e.Tag() {
		case "required", "not_blank":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "min", "gte":
			fields[field] = fmt.Sprintf("%s must be at least %s", field, e.Param())
		case "max", "lte":
			fields[field] = fmt.Sprintf("%s must be at most %s", field, e.Param())
		case "gt":
			fields[field] = fmt.Sprintf("%s must be greater than %s", field, e.Param())
		case "meal_slot":
			fields[field] = fmt.Sprintf("%s must be breakfast, lunch or dinner", field)
		case "iso_date":
			fields[field] = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		case "ingredient":
			fields[field] = fmt.Sprintf("%s is not a valid ingredient name", field)
		default:
			fields[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return fields
}
