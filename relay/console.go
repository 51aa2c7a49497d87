package relay

import (
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

// ConsoleRelay logs every atom at debug level and passes it on unchanged.
type ConsoleRelay struct {
	log     *logger.Logger
	metrics metrics.ComponentMetrics
	started time.Time
}

var _ Relay = (*ConsoleRelay)(nil)

// NewConsoleRelay creates a console relay.
func NewConsoleRelay(opts ...Option) *ConsoleRelay {
	o := buildOptions(NameConsole, opts)
	return &ConsoleRelay{log: o.log, metrics: metrics.New(o.ids.Next())}
}

func (r *ConsoleRelay) Initialize(cfg Config) error {
	r.started = time.Now()
	r.metrics.Activate()
	return nil
}

func (r *ConsoleRelay) Accept(a atom.Atom) (atom.Atom, bool) {
	r.metrics.IncrementMessages()
	if a.Kind() == atom.Data {
		r.metrics.AddRecords(1)
	}
	if a.Type() == atom.TypeError {
		r.metrics.IncrementErrors()
	}
	r.log.Debug("atom", Describe(a))
	return a, true
}

func (r *ConsoleRelay) Finish() bool {
	r.metrics.Complete()
	r.metrics.SetDuration(time.Since(r.started))
	r.log.Debug("relay finished", logger.Fields(logger.FieldRecords, r.metrics.RecordCount))
	return true
}

func (r *ConsoleRelay) Metrics() metrics.ComponentMetrics { return r.metrics }

// Describe renders an atom as log fields.
func Describe(a atom.Atom) map[string]interface{} {
	f := logger.Fields(
		logger.FieldAtom, string(a.Type()),
		"kind", a.Kind().String(),
	)
	switch v := a.(type) {
	case *atom.StartTask:
		f[logger.FieldCorrelationID] = v.Task.CorrelationID.String()
		f[logger.FieldPath] = v.Task.Name
	case *atom.ErrorAtom:
		if v.Err != nil {
			f[logger.FieldError] = v.Err.Error()
		}
	case *atom.Comment:
		f["text"] = v.Text
	case *atom.NameValuesAtom:
		f["names"] = v.Values.Names()
		f["values"] = v.Values.Values()
	default:
		if fields, ok := atom.Fields(a); ok {
			f["fields"] = fields
		}
	}
	return f
}
