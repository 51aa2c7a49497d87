package database

import (
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kbukum/riv/errors"
)

// IsConnectionError checks if a database error is a connection error
// that might be resolved by retrying.
func IsConnectionError(err error) bool {
	return containsAny(err, []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"connection closed",
		"connection lost",
		"driver: bad connection",
		"invalid connection",
		"unable to open database file",
	})
}

// IsRetryableError determines if a database error should trigger a retry.
func IsRetryableError(err error) bool {
	if IsConnectionError(err) {
		return true
	}
	return containsAny(err, []string{
		"deadlock",
		"lock timeout",
		"database is locked",
		"too many connections",
		"connection pool exhausted",
	})
}

func containsAny(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// FromDatabase converts a database error to an AppError. Missing records
// become NOT_FOUND, connection failures IO, everything else GENERAL.
func FromDatabase(err error, resource string) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	var e *errors.AppError
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		e = errors.NotFound(resource, "")
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		e = errors.Generalf("a %s with these details already exists", resource)
	case IsConnectionError(err):
		e = errors.IO(connectionKind(err), "database unavailable: "+err.Error())
	default:
		e = errors.Generalf("database operation on %s failed: %v", resource, err)
	}
	return e.WithCause(err).WithDetail("resource", resource)
}

func connectionKind(err error) errors.IOKind {
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "i/o timeout"):
		return errors.IOKindTimedOut
	case strings.Contains(s, "broken pipe"):
		return errors.IOKindBrokenPipe
	case strings.Contains(s, "unable to open database file"):
		return errors.IOKindNotFound
	default:
		return errors.IOKindOther
	}
}
