package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration and contract errors
const (
	// ErrCodeInvalidConfig indicates a source, relay or sink was configured incorrectly.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInvalidInput indicates a contract violation, such as accept before initialize.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Content errors
const (
	// ErrCodeParse indicates malformed input content.
	ErrCodeParse ErrorCode = "PARSE"
	// ErrCodeNotFound indicates a named resource does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Runtime errors
const (
	// ErrCodeIO wraps a failure of the underlying reader, writer or connection.
	ErrCodeIO ErrorCode = "IO"
	// ErrCodeGeneral is the catch-all for destination driver failures and capacity limits.
	ErrCodeGeneral ErrorCode = "GENERAL"
)

var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInvalidConfig: http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeParse:         http.StatusUnprocessableEntity,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeIO:            http.StatusInternalServerError,
	ErrCodeGeneral:       http.StatusInternalServerError,
}

// HTTPStatus returns the recommended HTTP status for a code.
func HTTPStatus(code ErrorCode) int {
	if s, ok := httpStatusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Codes returns the closed set of error codes.
func Codes() []ErrorCode {
	return []ErrorCode{
		ErrCodeInvalidConfig,
		ErrCodeParse,
		ErrCodeInvalidInput,
		ErrCodeIO,
		ErrCodeNotFound,
		ErrCodeGeneral,
	}
}
