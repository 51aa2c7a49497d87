package sink

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/component"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/kafka"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

// Kind identifies a sink implementation.
type Kind int

const (
	Capture Kind = iota
	Console
	Csv
	DevNull
	Json
	Sqlite
	MessageQueue
	Relational
)

var kindNames = map[Kind]string{
	Capture:      "capture",
	Console:      "console",
	Csv:          "csv",
	DevNull:      "devnull",
	Json:         "json",
	Sqlite:       "sqlite",
	MessageQueue: "kafka",
	Relational:   "relational",
}

// Kinds returns every sink kind in display order.
func Kinds() []Kind {
	return []Kind{Capture, Console, Csv, DevNull, Json, Sqlite, MessageQueue, Relational}
}

// String returns the display label, e.g. "CSV file".
func (k Kind) String() string {
	switch k {
	case Capture:
		return "Capture (in-memory)"
	case Console:
		return "Console"
	case Csv:
		return "CSV file"
	case DevNull:
		return "Null sink"
	case Json:
		return "JSON file"
	case Sqlite:
		return "Sqlite database"
	case MessageQueue:
		return "Kafka producer"
	case Relational:
		return "Relational database"
	default:
		return "unknown"
	}
}

// Name returns the short configuration name, e.g. "csv".
func (k Kind) Name() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind accepts a configuration name or a display label, ignoring case.
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds() {
		if strings.EqualFold(s, k.Name()) || strings.EqualFold(s, k.String()) {
			return k, true
		}
	}
	switch strings.ToLower(s) {
	case "null", "dev_null", "discard":
		return DevNull, true
	case "message_queue", "mq":
		return MessageQueue, true
	case "database", "db":
		return Relational, true
	}
	return 0, false
}

// Sink consumes atoms and commits them to a destination.
type Sink interface {
	Kind() Kind
	// Initialize opens the destination. Accept fails until it succeeds.
	Initialize(ctx context.Context) error
	// Accept commits one atom. Control atoms are no-ops; error atoms are
	// counted but never fail the sink.
	Accept(ctx context.Context, a atom.Atom) error
	// Close flushes and releases the destination. Failures are logged.
	Close(ctx context.Context)
	Metrics() metrics.ComponentMetrics
}

type phase int

const (
	phaseCreated phase = iota
	phaseOpen
	phaseClosed
)

// lifecycle carries the state shared by every sink: the accept guard,
// metrics and the component-scoped logger.
type lifecycle struct {
	kind      Kind
	log       *logger.Logger
	metrics   metrics.ComponentMetrics
	phase     phase
	started   time.Time
	notReady  *errors.AppError
	closedErr *errors.AppError
}

func newLifecycle(k Kind, o options) lifecycle {
	return lifecycle{
		kind:     k,
		log:      o.log,
		metrics:  metrics.New(o.ids.Next()),
		notReady: errors.InvalidInput(k.Name() + " sink accepted an atom before Initialize"),
	}
}

func (l *lifecycle) Kind() Kind                        { return l.kind }
func (l *lifecycle) Metrics() metrics.ComponentMetrics { return l.metrics }

// open moves the sink to the accepting state.
func (l *lifecycle) open() error {
	switch l.phase {
	case phaseOpen:
		return errors.InvalidInput(l.kind.Name() + " sink is already initialized")
	case phaseClosed:
		return l.closedErr
	}
	l.phase = phaseOpen
	l.started = time.Now()
	l.metrics.Reset()
	l.metrics.Activate()
	l.log.Debug("sink initialized")
	return nil
}

// reject undoes open after a failed Initialize so Accept keeps failing.
func (l *lifecycle) reject(err error) error {
	l.phase = phaseCreated
	l.metrics.Fail()
	l.log.Warn("sink initialization failed", logger.Fields(logger.FieldError, err.Error()))
	return err
}

// guard checks the accept precondition and counts the message. handled
// is true for control atoms, which need no further work.
func (l *lifecycle) guard(a atom.Atom) (handled bool, err error) {
	switch l.phase {
	case phaseCreated:
		return true, l.notReady
	case phaseClosed:
		return true, l.closedErr
	}
	l.metrics.IncrementMessages()
	if a.Kind() != atom.Control {
		return false, nil
	}
	if e, ok := a.(*atom.ErrorAtom); ok {
		l.metrics.IncrementErrors()
		if e.Err != nil {
			l.log.Warn("error atom received", logger.Fields(logger.FieldError, e.Err.Error()))
		}
	}
	return true, nil
}

// fail records a failed accept and returns err.
func (l *lifecycle) fail(err error) error {
	l.metrics.IncrementErrors()
	l.metrics.Fail()
	return err
}

// shut moves the sink to the closed state. It reports false when the sink
// was already closed.
func (l *lifecycle) shut() bool {
	if l.phase == phaseClosed {
		return false
	}
	wasOpen := l.phase == phaseOpen
	l.phase = phaseClosed
	l.closedErr = errors.InvalidInput(l.kind.Name() + " sink is closed")
	if wasOpen {
		l.metrics.SetDuration(time.Since(l.started))
		if l.metrics.Status != metrics.Failed {
			l.metrics.Complete()
		}
	}
	return wasOpen
}

// logSecondary reports a failure that happened while closing.
func (l *lifecycle) logSecondary(msg string, err error) {
	l.metrics.IncrementErrors()
	l.metrics.Fail()
	l.log.Warn(msg, logger.Fields(logger.FieldError, err.Error()))
}

func (l *lifecycle) logClosed() {
	l.log.Debug("sink closed", logger.Fields(
		logger.FieldRecords, l.metrics.RecordCount,
		logger.FieldBytes, l.metrics.ByteCount,
		logger.FieldStatus, l.metrics.Status.String(),
	))
}

// recordBytes sums the field lengths of a data or header atom.
func recordBytes(fields []string) uint64 {
	var n uint64
	for _, f := range fields {
		n += uint64(len(f))
	}
	return n
}

type options struct {
	log         *logger.Logger
	ids         *component.IDGenerator
	output      io.Writer
	kafkaWriter kafka.MessageWriter
}

// Option configures a sink.
type Option func(*options)

// WithLogger sets the sink logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithIDGenerator sets where the sink draws its metrics id from.
func WithIDGenerator(g *component.IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

func buildOptions(k Kind, opts []Option) options {
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
	o.log = o.log.WithComponent("sink").WithFields(logger.Fields(logger.FieldSink, k.Name()))
	return o
}
