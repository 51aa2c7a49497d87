package errors

import (
	"fmt"
	"maps"
)

// AppError is the unified pipeline error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// IOKind classifies the underlying I/O failure. Only set for ErrCodeIO.
	IOKind IOKind `json:"io_kind,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	prefix := string(e.Code)
	if e.Code == ErrCodeIO && e.IOKind != "" {
		prefix = fmt.Sprintf("%s(%s)", e.Code, e.IOKind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code and I/O kind, so errors.Is works
// against sentinel values built with New.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.IOKind == "" || e.IOKind == t.IOKind)
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Clone returns a copy that can be stored and replayed independently.
// The cause is flattened to its message so the copy holds no live handles.
func (e *AppError) Clone() *AppError {
	if e == nil {
		return nil
	}
	c := &AppError{Code: e.Code, Message: e.Message, IOKind: e.IOKind}
	if e.Details != nil {
		c.Details = maps.Clone(e.Details)
	}
	if e.Cause != nil {
		c.Cause = fmt.Errorf("%s", e.Cause.Error())
	}
	return c
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// --- Constructors ---

// InvalidConfig creates an error for a bad configuration value.
func InvalidConfig(field, reason string) *AppError {
	e := &AppError{Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("Invalid configuration: %s", reason)}
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Parse creates an error for malformed input content.
func Parse(reason string) *AppError {
	return &AppError{Code: ErrCodeParse, Message: reason}
}

// InvalidInput creates an error for a contract violation.
func InvalidInput(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: reason}
}

// NotFound creates an error for a missing named resource.
func NotFound(resource, name string) *AppError {
	e := &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource)}
	e.WithDetail("resource", resource)
	if name != "" {
		e.WithDetail("name", name)
	}
	return e
}

// IO creates an error for an I/O failure of the given kind.
func IO(kind IOKind, message string) *AppError {
	return &AppError{Code: ErrCodeIO, IOKind: kind, Message: message}
}

// General creates a catch-all error with a human-readable message.
func General(message string) *AppError {
	return &AppError{Code: ErrCodeGeneral, Message: message}
}

// Generalf creates a catch-all error with a formatted message.
func Generalf(format string, args ...any) *AppError {
	return General(fmt.Sprintf(format, args...))
}

// CodeOf returns the code of err, or ErrCodeGeneral for foreign errors
// and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeGeneral
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IOKindOf returns the I/O kind of err, or "" when err is not an I/O error.
func IOKindOf(err error) IOKind {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeIO {
		return ""
	}
	return appErr.IOKind
}

// Wrap converts any error to an AppError. AppErrors pass through unchanged,
// I/O errors are classified with FromIO, and anything else becomes GENERAL.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if kind, ok := classifyIO(err); ok {
		return IO(kind, err.Error()).WithCause(err)
	}
	return General(err.Error()).WithCause(err)
}
