package server

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/server/middleware"
	"github.com/kbukum/riv/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string                `mapstructure:"host"`
	Port         int                   `mapstructure:"port" validate:"min=0,max=65535"`
	ReadTimeout  time.Duration         `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration         `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  time.Duration         `mapstructure:"idle_timeout" validate:"min=0"`
	MaxBodySize  string                `mapstructure:"max_body_size"` // e.g. "10MB"
	CORS         middleware.CORSConfig `mapstructure:"cors"`
	// History is the number of finished runs kept in memory.
	History int `mapstructure:"history" validate:"min=0"`
	// BaseDir confines the input and output files a run may name. Relative
	// paths in requests resolve against it.
	BaseDir string `mapstructure:"base_dir"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Minute
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	if c.History == 0 {
		c.History = 50
	}
	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	if abs, err := filepath.Abs(c.BaseDir); err == nil {
		c.BaseDir = abs
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID}
	}
}

// Validate checks the configuration for invalid values. A set BaseDir
// must be an existing directory.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.CORS.Validate(); err != nil {
		return err
	}
	if c.BaseDir != "" {
		if fi, err := os.Stat(c.BaseDir); err != nil || !fi.IsDir() {
			return errors.InvalidConfig("base_dir", "not a directory: "+c.BaseDir)
		}
	}
	return nil
}
