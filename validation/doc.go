// Package validation checks component settings and reports failures as
// INVALID_CONFIG errors.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection.
//
// # Struct Tag Validation
//
//	type CsvSettings struct {
//	    Path      string `mapstructure:"path" validate:"required"`
//	    Delimiter string `mapstructure:"delimiter" validate:"single_byte"`
//	}
//	err := validation.Validate(settings)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("path", s.Path).SingleByte("delimiter", s.Delimiter)
//	err := v.Validate()
package validation
