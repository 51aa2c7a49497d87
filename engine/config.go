package engine

import (
	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/component"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/observability"
	"github.com/kbukum/riv/relay"
	"github.com/kbukum/riv/sink"
	"github.com/kbukum/riv/source"
	"github.com/kbukum/riv/validation"
)

// Config is the pipeline section of the application configuration.
//
//	source:
//	  path: people.csv
//	  has_header: true
//	relays:
//	  - name: filter
//	    drop: [metadata]
//	sink:
//	  kind: sqlite
//	  path: people.db
//	  table: people
type Config struct {
	Source source.Config  `mapstructure:"source"`
	Relays []relay.Config `mapstructure:"relays" validate:"dive"`
	Sink   sink.Config    `mapstructure:"sink"`
}

// ApplyDefaults fills the source delimiter and picks the console sink when
// none is configured.
func (c *Config) ApplyDefaults() {
	c.Source.ApplyDefaults()
	if c.Sink.Kind == "" {
		c.Sink.Kind = sink.Console.Name()
	}
}

// Validate checks the configuration including the sink settings.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	_, err := c.Sink.Settings()
	return err
}

type options struct {
	log       *logger.Logger
	ids       *component.IDGenerator
	telemetry *observability.Metrics
	tel       *observability.Telemetry
	sinkOpts  []sink.Option
}

// Option configures pipeline construction.
type Option func(*options)

// WithLogger sets the logger handed to every stage.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithIDGenerator sets where stages draw their metrics ids from.
func WithIDGenerator(g *component.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithTelemetry records run and stage metrics on m.
func WithTelemetry(m *observability.Metrics) Option {
	return func(o *options) { o.telemetry = m }
}

// WithTelemetryComponent records run and stage metrics on the instruments
// of t. They are looked up when a pipeline is built, so t may be started
// after the option is created.
func WithTelemetryComponent(t *observability.Telemetry) Option {
	return func(o *options) { o.tel = t }
}

// WithSinkOptions passes extra options to the sink constructor.
func WithSinkOptions(opts ...sink.Option) Option {
	return func(o *options) { o.sinkOpts = append(o.sinkOpts, opts...) }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}
	if o.ids == nil {
		o.ids = component.DefaultIDs()
	}
	if o.telemetry == nil && o.tel != nil {
		o.telemetry = o.tel.Metrics()
	}
	return o
}

// FromConfig builds a ready-to-run pipeline. The source file is opened
// here, so a missing input fails with IO not_found before anything else
// is constructed.
func FromConfig(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	settings, err := cfg.Sink.Settings()
	if err != nil {
		return nil, err
	}
	return build(cfg.Source, cfg.Relays, settings, buildOptions(opts))
}

func build(srcCfg source.Config, relayCfgs []relay.Config, settings sink.Settings, o options) (*Pipeline, error) {
	var task *atom.TaskMetadata
	if srcCfg.EmitTaskAtoms {
		t, err := source.DescribeFile(srcCfg.Path)
		if err != nil {
			return nil, err
		}
		task = &t
	}

	src, err := source.Open(srcCfg, source.WithLogger(o.log), source.WithIDGenerator(o.ids))
	if err != nil {
		return nil, err
	}

	relays := make([]relay.Relay, 0, len(relayCfgs))
	for _, rc := range relayCfgs {
		r, err := relay.Build(rc, relay.WithLogger(o.log), relay.WithIDGenerator(o.ids))
		if err != nil {
			src.Close()
			return nil, err
		}
		relays = append(relays, r)
	}

	sinkOpts := append([]sink.Option{sink.WithLogger(o.log), sink.WithIDGenerator(o.ids)}, o.sinkOpts...)
	snk, err := sink.Build(settings, sinkOpts...)
	if err != nil {
		src.Close()
		return nil, err
	}

	return &Pipeline{
		Source:       src,
		Relays:       relays,
		RelayConfigs: relayCfgs,
		Sink:         snk,
		Task:         task,
		Path:         srcCfg.Path,
		Logger:       o.log,
		Telemetry:    o.telemetry,
	}, nil
}
