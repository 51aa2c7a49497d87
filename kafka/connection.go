package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/kbukum/riv/errors"
)

// NewTransport builds the writer transport, with TLS and SASL when
// enabled. Unreadable certificates and unknown mechanisms are
// INVALID_CONFIG errors.
func NewTransport(cfg *Config) (*kafkago.Transport, error) {
	t := &kafkago.Transport{
		IdleTimeout: ParseDuration(cfg.IdleTimeout),
		MetadataTTL: ParseDuration(cfg.MetadataTTL),
	}
	if cfg.EnableTLS {
		tc, err := tlsConfig(cfg)
		if err != nil {
			return nil, err
		}
		t.TLS = tc
	}
	if cfg.EnableSASL {
		m, err := mechanism(cfg)
		if err != nil {
			return nil, err
		}
		t.SASL = m
	}
	return t, nil
}

func tlsConfig(cfg *Config) (*tls.Config, error) {
	tc := &tls.Config{
		InsecureSkipVerify: cfg.TLSSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if cfg.TLSCAFile != "" {
		pem, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, errors.InvalidConfig("tls_ca_file", err.Error()).WithCause(err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.InvalidConfig("tls_ca_file", "no PEM certificate in "+cfg.TLSCAFile)
		}
		tc.RootCAs = pool
	}
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, errors.InvalidConfig("tls_cert_file", err.Error()).WithCause(err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}
	return tc, nil
}

func mechanism(cfg *Config) (sasl.Mechanism, error) {
	var (
		m   sasl.Mechanism
		err error
	)
	switch cfg.SASLMechanism {
	case "PLAIN":
		m = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	case "SCRAM-SHA-256":
		m, err = scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		m, err = scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, errors.InvalidConfig("sasl_mechanism", "unsupported SASL mechanism "+cfg.SASLMechanism)
	}
	if err != nil {
		return nil, errors.InvalidConfig("sasl_mechanism", err.Error()).WithCause(err)
	}
	return m, nil
}

var compressions = map[string]kafkago.Compression{
	"none":   0,
	"gzip":   kafkago.Gzip,
	"snappy": kafkago.Snappy,
	"lz4":    kafkago.Lz4,
	"zstd":   kafkago.Zstd,
}

// ResolveCompression maps a codec name to kafka-go's constant. Unknown
// names fall back to snappy.
func ResolveCompression(name string) kafkago.Compression {
	if c, ok := compressions[name]; ok {
		return c
	}
	return kafkago.Snappy
}
