package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/riv/errors"
)

// Validator collects validation errors for checks that struct tags cannot
// express, such as cross-field rules.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an INVALID_CONFIG AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	return newConfigError(v.errors)
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// SingleByte checks that a delimiter-like value is exactly one byte.
func (v *Validator) SingleByte(field, value string) *Validator {
	if len(value) != 1 {
		v.AddError(field, "must be a single character")
	}
	return v
}

// Identifier checks that value can be used as an unquoted table or topic name.
func (v *Validator) Identifier(field, value string) *Validator {
	if !identifierPattern.MatchString(value) {
		v.AddError(field, "must be a plain identifier")
	}
	return v
}

// Range checks if an integer is within [lo, hi].
func (v *Validator) Range(field string, value, lo, hi int) *Validator {
	if value < lo || value > hi {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if !slices.Contains(allowed, value) {
		v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	}
	return v
}

// Custom adds an error if the condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

func newConfigError(fields []FieldError) *errors.AppError {
	messages := make([]string, len(fields))
	for i, e := range fields {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	appErr := errors.New(errors.ErrCodeInvalidConfig, strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": fields,
	}
	return appErr
}
