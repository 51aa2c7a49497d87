package atom

import (
	"github.com/google/uuid"
)

// TaskMetadata describes the input of one pipeline run.
type TaskMetadata struct {
	// CorrelationID ties together every log line and atom of one run.
	CorrelationID uuid.UUID `json:"correlation_id"`
	// Origin is the source type that produced the task, e.g. "csv_bytes".
	Origin string `json:"origin"`
	// Name is the input file name without directories.
	Name string `json:"name"`
	// SHA256 is the hex content digest of the input.
	SHA256 string `json:"sha256"`
	// ByteCount is the input size in bytes.
	ByteCount int64 `json:"byte_count"`
}

// NewTaskMetadata returns metadata with a fresh random correlation id.
func NewTaskMetadata(origin, name, sha256 string, byteCount int64) TaskMetadata {
	return TaskMetadata{
		CorrelationID: uuid.New(),
		Origin:        origin,
		Name:          name,
		SHA256:        sha256,
		ByteCount:     byteCount,
	}
}
