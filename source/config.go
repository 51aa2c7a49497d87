package source

import (
	"github.com/kbukum/riv/config"
	"github.com/kbukum/riv/validation"
)

// Config describes where and how to read input.
type Config struct {
	Path string `mapstructure:"path" validate:"required"`
	// Delimiter is a single byte; ";" by default.
	Delimiter string `mapstructure:"delimiter" validate:"omitempty,single_byte"`
	// HasHeader treats the first record as field names.
	HasHeader bool `mapstructure:"has_header"`
	// Comment enables comment lines starting with this byte.
	Comment string `mapstructure:"comment" validate:"omitempty,single_byte"`
	// ReportBlankLines emits BlankLine atoms instead of skipping them.
	ReportBlankLines bool `mapstructure:"report_blank_lines"`
	// ReportComments emits Comment atoms for comment lines. It has no
	// effect unless Comment is set.
	ReportComments bool `mapstructure:"report_comments"`
	// EmitTaskAtoms asks the driver to wrap the stream in StartTask and
	// FinishTask.
	EmitTaskAtoms bool `mapstructure:"emit_task_atoms"`

	config.Values `mapstructure:",remain"`
}

// DefaultConfig returns a config for path with a header row and ';'.
func DefaultConfig(path string) Config {
	return Config{Path: path, Delimiter: ";", HasHeader: true}
}

// ApplyDefaults fills the delimiter.
func (c *Config) ApplyDefaults() {
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// DelimiterByte returns the configured delimiter, ';' when unset.
func (c *Config) DelimiterByte() byte {
	if len(c.Delimiter) == 1 {
		return c.Delimiter[0]
	}
	return ';'
}

// CommentByte returns the comment byte, if any.
func (c *Config) CommentByte() (byte, bool) {
	if len(c.Comment) == 1 {
		return c.Comment[0], true
	}
	return 0, false
}
