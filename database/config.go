package database

import (
	"time"

	"github.com/kbukum/riv/validation"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration.
type Config struct {
	// Driver selects the gorm dialector: sqlite, mysql or postgres.
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite mysql postgres"`

	// DSN is a complete driver connection string. When set it wins over
	// the individual connection fields below.
	DSN string `mapstructure:"dsn"`

	// Host, Port, User, Password and Database build the DSN for the
	// network drivers. For sqlite Database is the file path.
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`

	// SSLMode is passed to postgres; "disable" by default.
	SSLMode string `mapstructure:"ssl_mode"`

	// DialTimeout bounds a single connection attempt (e.g. "5s").
	DialTimeout string `mapstructure:"dial_timeout"`

	// MaxOpenConns sets the maximum number of open connections to the database.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h", "30m").
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`

	// ConnMaxIdleTime is the maximum time a connection may sit idle (e.g. "5m").
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// RetryBackoff is the wait after the first failed attempt; it doubles after each further failure.
	RetryBackoff string `mapstructure:"retry_backoff"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`

	// LogLevel is the gorm log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`

	// Tracing installs the OpenTelemetry gorm plugin.
	Tracing bool `mapstructure:"tracing"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.ConnMaxIdleTime == "" {
		c.ConnMaxIdleTime = "5m"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "1s"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "10s"
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Host == "" && c.Driver != DriverSQLite {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		switch c.Driver {
		case DriverMySQL:
			c.Port = 3306
		case DriverPostgres:
			c.Port = 5432
		}
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New()
	v.Custom(c.DSN != "" || c.Database != "", "database", "is required when dsn is empty")
	v.Custom(c.MaxIdleConns <= c.MaxOpenConns, "max_idle_conns", "must be <= max_open_conns")
	for field, value := range map[string]string{
		"conn_max_lifetime":    c.ConnMaxLifetime,
		"conn_max_idle_time":   c.ConnMaxIdleTime,
		"retry_backoff":        c.RetryBackoff,
		"dial_timeout":         c.DialTimeout,
		"slow_query_threshold": c.SlowQueryThreshold,
	} {
		if value == "" {
			continue
		}
		_, err := time.ParseDuration(value)
		v.Custom(err == nil, field, "must be a duration such as 5s")
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
