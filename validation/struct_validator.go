package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/riv/errors"
)

var (
	validate *validator.Validate
	once     sync.Once

	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use mapstructure tag names so messages match the config keys users write
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
		_ = validate.RegisterValidation("single_byte", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) == 1
		})
		_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate validates a struct using struct tags and returns an
// INVALID_CONFIG AppError listing every failing field.
// Uses tags like `validate:"required,single_byte"`.
func Validate(s any) error {
	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.InvalidConfig("", err.Error())
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   e.Field(),
			Message: formatValidationError(e),
		})
	}
	return newConfigError(fieldErrors)
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be >= " + e.Param()
	case "lte":
		return "must be <= " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "single_byte":
		return "must be a single character"
	case "identifier":
		return "must be a plain identifier"
	case "hostname_rfc1123", "hostname":
		return "must be a valid host name"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32) // lowercase
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
