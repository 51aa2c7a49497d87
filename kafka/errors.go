package kafka

import (
	"strings"

	"github.com/kbukum/riv/errors"
)

// IsConnectionError checks if a Kafka error is a connection-level error.
func IsConnectionError(err error) bool {
	return containsAny(err, []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection closed",
		"dial tcp",
		"network exception",
	})
}

// IsRetryableError determines if a Kafka error should trigger a retry.
func IsRetryableError(err error) bool {
	if IsConnectionError(err) {
		return true
	}
	return containsAny(err, []string{
		"temporary",
		"request timed out",
		"not enough replicas",
	})
}

// IsNonRetryableError checks if the error should not be retried.
func IsNonRetryableError(err error) bool {
	return containsAny(err, []string{
		"message too large",
		"invalid topic",
		"invalid partition",
		"unknown topic",
		"authorization failed",
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

// FromKafka converts a producer error to an AppError. Connection failures
// become IO errors, rejected messages INVALID_INPUT, everything else GENERAL.
func FromKafka(err error, topic string) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	var e *errors.AppError
	switch {
	case IsConnectionError(err):
		kind := errors.IOKindOther
		if strings.Contains(strings.ToLower(err.Error()), "i/o timeout") {
			kind = errors.IOKindTimedOut
		}
		e = errors.IO(kind, "message queue unavailable: "+err.Error())
	case IsNonRetryableError(err):
		e = errors.InvalidInput("message rejected: " + err.Error())
	default:
		e = errors.General("message queue write failed: " + err.Error())
	}
	return e.WithCause(err).WithDetail("topic", topic)
}
