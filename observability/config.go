package observability

import (
	"fmt"
	"time"

	"github.com/kbukum/riv/version"
)

// Config is the telemetry section of the application configuration.
// Export stays off unless Enabled is set.
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Environment    string        `mapstructure:"environment"`
	Endpoint       string        `mapstructure:"endpoint"`
	Insecure       bool          `mapstructure:"insecure"`
	SampleRate     float64       `mapstructure:"sample_rate"`
	Interval       time.Duration `mapstructure:"interval"`
	// Propagators lists the trace context formats read and written on
	// HTTP requests: tracecontext, baggage, b3 or b3multi.
	Propagators []string `mapstructure:"propagators"`
}

// ApplyDefaults fills unset fields with development defaults.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "riv"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = version.Short()
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
	if len(c.Propagators) == 0 {
		c.Propagators = []string{PropagatorTraceContext, PropagatorBaggage}
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("telemetry: endpoint is required when enabled")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry: sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	if c.Interval < 0 {
		return fmt.Errorf("telemetry: interval must not be negative")
	}
	if _, err := NewPropagator(c.Propagators); err != nil {
		return err
	}
	return nil
}

// TracerConfig derives the tracer settings.
func (c *Config) TracerConfig() TracerConfig {
	return TracerConfig{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
		Propagators:    c.Propagators,
	}
}

// MeterConfig derives the meter settings.
func (c *Config) MeterConfig() MeterConfig {
	return MeterConfig{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.Interval,
	}
}
