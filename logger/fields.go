package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent     = "component"
	FieldComponentID   = "component_id"
	FieldCorrelationID = "correlation_id"
	FieldStage         = "stage"
	FieldSink          = "sink"
	FieldSource        = "source"
	FieldAtom          = "atom"
	FieldPath          = "path"
	FieldRecords       = "records"
	FieldBytes         = "bytes"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("sink", "csv", "records", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(stage string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldStage: stage,
		FieldError: err.Error(),
	}
}

// DurationFields creates fields for a timed stage.
func DurationFields(stage string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldStage:    stage,
		FieldDuration: d.Milliseconds(),
	}
}
