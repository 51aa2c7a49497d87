package main

import (
	"github.com/spf13/pflag"

	"github.com/kbukum/riv/config"
	"github.com/kbukum/riv/engine"
	"github.com/kbukum/riv/observability"
	"github.com/kbukum/riv/server"
)

// cliConfig is the riv.yml layout. The pipeline keys (source, relays,
// sink) sit at the top level.
type cliConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
	engine.Config        `mapstructure:",squash"`

	Worker    workerConfig         `mapstructure:"worker"`
	Telemetry observability.Config `mapstructure:"telemetry"`
	Server    server.Config        `mapstructure:"server"`

	// needsPipeline is set by the commands that run a pipeline from the
	// config.
	needsPipeline bool
}

type workerConfig struct {
	// MetricsEvery is how many accepted atoms pass between progress
	// reports.
	MetricsEvery uint64 `mapstructure:"metrics_every"`
}

func (c *cliConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Config.ApplyDefaults()
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Telemetry.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Worker.MetricsEvery == 0 {
		c.Worker.MetricsEvery = 10000
	}
}

func (c *cliConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.needsPipeline {
		return c.Config.Validate()
	}
	return nil
}

// commonFlags are accepted by every command that loads configuration.
type commonFlags struct {
	configFile string
	envFile    string
	quiet      bool
}

func addCommonFlags(fs *pflag.FlagSet, cf *commonFlags) {
	fs.StringVarP(&cf.configFile, "config", "c", "", "config file (default ./riv.yml if present)")
	fs.StringVar(&cf.envFile, "env-file", "", "env file loaded before RIV_* variables (default ./.env if present)")
	fs.BoolVarP(&cf.quiet, "quiet", "q", false, "suppress the run report")
	fs.Bool("debug", false, "debug logging")
	fs.String("logging.level", "", "log level: debug, info, warn, error")
	fs.String("logging.format", "", "log format: console, json, pretty")
	fs.Bool("telemetry.enabled", false, "export traces and metrics over OTLP")
	fs.String("telemetry.endpoint", "", "OTLP HTTP endpoint")
	fs.StringSlice("telemetry.propagators", nil, "trace propagation formats: tracecontext, baggage, b3, b3multi")
}

func addPipelineFlags(fs *pflag.FlagSet) {
	fs.StringP("source.delimiter", "d", "", "field delimiter (default \";\")")
	fs.Bool("source.has_header", true, "treat the first record as the header")
	fs.String("source.comment", "", "comment line prefix")
	fs.Bool("source.report_blank_lines", false, "emit blank lines as atoms")
	fs.Bool("source.report_comments", false, "emit comment lines as atoms")
	fs.Bool("source.emit_task_atoms", false, "wrap the stream in start and finish task atoms")

	fs.StringP("sink.kind", "k", "", "sink kind: console, csv, json, sqlite, kafka, relational, devnull")
	fs.StringP("sink.path", "o", "", "output path for csv, json and sqlite sinks")
	fs.String("sink.delimiter", "", "csv sink delimiter")
	fs.Bool("sink.pretty", false, "indent json output")
	fs.String("sink.table", "", "table for database sinks")
	fs.String("sink.server", "", "broker or database host")
	fs.Int("sink.port", 0, "broker or database port")
	fs.String("sink.topic", "", "kafka topic")
	fs.String("sink.driver", "", "relational driver: mysql, postgres")
	fs.String("sink.user", "", "database user")
	fs.String("sink.password", "", "database password")
	fs.String("sink.database", "", "database name")

	fs.Uint64("worker.metrics_every", 0, "atoms between progress reports")
}

func addServeFlags(fs *pflag.FlagSet) {
	fs.String("server.host", "", "listen host (default 127.0.0.1)")
	fs.String("server.base_dir", "", "directory that run input and output paths must stay inside (default working directory)")
	fs.StringSlice("server.cors.allowed_origins", nil, "browser origins allowed to call the run API")
	fs.IntP("server.port", "p", 0, "listen port (default 8080)")
	fs.String("server.max_body_size", "", "request body limit, e.g. 1MB")
	fs.String("source.delimiter", "", "field delimiter for runs (default \";\")")
	fs.Bool("source.has_header", true, "treat the first record as the header")
}

// loadConfig reads the config file, environment and the flags the user set.
func loadConfig(fs *pflag.FlagSet, cf commonFlags, defaults map[string]any) (*cliConfig, error) {
	opts := []config.LoaderOption{config.WithFlags(fs), config.WithDefaults(defaults)}
	if cf.configFile != "" {
		opts = append(opts, config.WithConfigFile(cf.configFile))
	}
	if cf.envFile != "" {
		opts = append(opts, config.WithEnvFile(cf.envFile))
	}
	var cfg cliConfig
	if err := config.Load(&cfg, opts...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
