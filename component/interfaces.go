package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a long-running piece of a riv process, such as the pipeline
// worker, the HTTP control server or the telemetry exporters.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information about a pipeline stage or component.
type Description struct {
	// ID is the stage identifier handed out by an IDGenerator; 0 if none.
	ID uint32 `json:"id"`
	// Name is the human-readable display name (e.g., "CSV Sink").
	Name string `json:"name"`
	// Type categorizes the stage: "source", "relay", "sink", "server".
	Type string `json:"type"`
	// Details is a one-liner such as "path=/tmp/out.csv delimiter=,".
	Details string `json:"details,omitempty"`
}

// Describable is implemented by stages that can report what they are and
// how they are configured.
type Describable interface {
	Describe() Description
}
