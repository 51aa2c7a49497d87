package kafka

import (
	"time"

	"github.com/kbukum/riv/validation"
)

var saslMechanisms = []string{"PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"}

// Config holds the producer connection settings of a message-queue sink.
type Config struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `mapstructure:"brokers" validate:"min=1,dive,required"`
	// Topic receives every record of a run.
	Topic string `mapstructure:"topic" validate:"required"`

	// TLS
	EnableTLS     bool   `mapstructure:"enable_tls"`
	TLSSkipVerify bool   `mapstructure:"tls_skip_verify"`
	TLSCAFile     string `mapstructure:"tls_ca_file"`
	TLSCertFile   string `mapstructure:"tls_cert_file"`
	TLSKeyFile    string `mapstructure:"tls_key_file"`

	// SASL
	EnableSASL    bool   `mapstructure:"enable_sasl"`
	SASLMechanism string `mapstructure:"sasl_mechanism"` // PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`

	// Producer settings
	Compression  string `mapstructure:"compression" validate:"oneof=none gzip snappy lz4 zstd"`
	Retries      int    `mapstructure:"retries" validate:"gt=0"`
	BatchSize    int    `mapstructure:"batch_size" validate:"gt=0"`
	BatchTimeout string `mapstructure:"batch_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	RequiredAcks int    `mapstructure:"required_acks" validate:"oneof=-1 0 1"`

	// Connection settings
	IdleTimeout string `mapstructure:"idle_timeout"`
	MetadataTTL string `mapstructure:"metadata_ttl"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BatchTimeout == "" {
		c.BatchTimeout = "1s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = -1 // all replicas
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "30s"
	}
	if c.MetadataTTL == "" {
		c.MetadataTTL = "6s"
	}
	if c.SASLMechanism == "" && c.EnableSASL {
		c.SASLMechanism = "PLAIN"
	}
}

// Validate checks required fields and the duration strings. Failures are
// INVALID_CONFIG errors naming each offending field.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	for field, value := range map[string]string{
		"batch_timeout": c.BatchTimeout,
		"write_timeout": c.WriteTimeout,
		"idle_timeout":  c.IdleTimeout,
		"metadata_ttl":  c.MetadataTTL,
	} {
		_, err := time.ParseDuration(value)
		v.Custom(err == nil, field, "must be a duration such as 5s")
	}
	if c.EnableSASL {
		v.OneOf("sasl_mechanism", c.SASLMechanism, saslMechanisms)
		v.Required("username", c.Username)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ParseDuration parses a duration string, returning zero on empty input.
func ParseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
