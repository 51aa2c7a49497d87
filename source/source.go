package source

import (
	"io"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/component"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

// Type names a source implementation.
type Type string

const (
	TypeCsvBytes   Type = "csv_bytes"
	TypeCsvStrings Type = "csv_strings"
	TypeVector     Type = "vector"
)

// Source produces a finite, non-restartable sequence of atoms.
type Source interface {
	Type() Type
	// Next returns the next atom, or false once the source is exhausted
	// or broken.
	Next() (atom.Atom, bool)
	// Close releases the underlying reader. completed is true only after
	// natural exhaustion; err is the captured failure of a broken source.
	// Close is idempotent.
	Close() (completed bool, err error)
	Metrics() metrics.ComponentMetrics
}

type options struct {
	log *logger.Logger
	ids *component.IDGenerator
}

// Option configures a source.
type Option func(*options)

// WithLogger sets the logger used for secondary failures.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithIDGenerator sets where the source draws its metrics id from.
func WithIDGenerator(g *component.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

func buildOptions(t Type, opts []Option) options {
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
	o.log = o.log.WithComponent("source").WithFields(logger.Fields(logger.FieldSource, string(t)))
	return o
}

// closeReader closes r when it is an io.Closer. Failures are logged.
func closeReader(r io.Reader, log *logger.Logger) {
	c, ok := r.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("closing source reader failed", logger.Fields(logger.FieldError, err.Error()))
	}
}
