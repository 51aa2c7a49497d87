package relay

import (
	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/component"
	"github.com/kbukum/riv/config"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
	"github.com/kbukum/riv/validation"
)

// Relay observes, filters or replaces atoms between a source and a sink.
type Relay interface {
	Initialize(cfg Config) error
	// Accept returns the atom to pass on, or false to drop it.
	Accept(a atom.Atom) (atom.Atom, bool)
	// Finish reports whether the relay ended cleanly.
	Finish() bool
	Metrics() metrics.ComponentMetrics
}

// Relay names accepted by Build.
const (
	NameConsole    = "console"
	NameStatistics = "statistics"
	NameFilter     = "filter"
)

// Config configures one relay in a chain.
type Config struct {
	Name string `mapstructure:"name" validate:"required,oneof=console statistics filter"`
	// Drop lists atom kinds (control, data, metadata) or atom types
	// (comment, blank, header, ...) a filter relay removes.
	Drop []string `mapstructure:"drop"`

	config.Values `mapstructure:",remain"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

type options struct {
	log *logger.Logger
	ids *component.IDGenerator
}

// Option configures a relay.
type Option func(*options)

// WithLogger sets the relay logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithIDGenerator sets where the relay draws its metrics id from.
func WithIDGenerator(g *component.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

func buildOptions(name string, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}
	if o.ids == nil {
		o.ids = component.DefaultIDs()
	}
	o.log = o.log.WithComponent("relay").WithFields(logger.Fields(logger.FieldStage, name))
	return o
}

// Build constructs the relay named by cfg. The relay is not initialized.
func Build(cfg Config, opts ...Option) (Relay, error) {
	switch cfg.Name {
	case NameConsole:
		return NewConsoleRelay(opts...), nil
	case NameStatistics:
		return NewStatisticsRelay(opts...), nil
	case NameFilter:
		return NewFilterRelay(opts...), nil
	default:
		return nil, errors.InvalidConfig("name", "unknown relay "+cfg.Name)
	}
}

// Chain threads an atom through relays in order. A drop stops the chain
// for that atom.
func Chain(relays []Relay, a atom.Atom) (atom.Atom, bool) {
	for _, r := range relays {
		var ok bool
		if a, ok = r.Accept(a); !ok {
			return nil, false
		}
	}
	return a, true
}
