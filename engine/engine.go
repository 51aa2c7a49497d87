package engine

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
	"github.com/kbukum/riv/observability"
	"github.com/kbukum/riv/pipeline"
	"github.com/kbukum/riv/relay"
	"github.com/kbukum/riv/sink"
	"github.com/kbukum/riv/source"
)

// Run status labels reported to telemetry and logs.
const (
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
	StatusIncomplete = "incomplete"
	StatusFailed     = "failed"
)

// Pipeline wires one source, zero or more relays and one sink. A pipeline
// runs once; its stages are not reusable.
type Pipeline struct {
	Source source.Source
	Relays []relay.Relay
	// RelayConfigs are passed to Initialize by position. Missing entries
	// are zero configs.
	RelayConfigs []relay.Config
	Sink         sink.Sink
	// Task, when set, wraps the stream in StartTask and FinishTask atoms.
	Task *atom.TaskMetadata
	// Path labels the run in logs and telemetry.
	Path string

	Logger    *logger.Logger
	Telemetry *observability.Metrics
	// OnAtom is called after the sink accepted an atom.
	OnAtom func(atom.Atom)
}

// RunMetrics holds the per-stage snapshots of a finished run.
type RunMetrics struct {
	Source metrics.ComponentMetrics   `json:"source"`
	Relays []metrics.ComponentMetrics `json:"relays,omitempty"`
	Sink   metrics.ComponentMetrics   `json:"sink"`
	Total  metrics.ComponentMetrics   `json:"total"`
}

// Result describes how a run ended.
type Result struct {
	// Completed is true when the source reached its natural end, every
	// relay finished and the sink closed cleanly.
	Completed bool `json:"completed"`
	// Abandoned is true when the context ended the run between atoms.
	Abandoned bool  `json:"abandoned"`
	SourceErr error `json:"-"`
	SinkErr   error `json:"-"`
	// RelayFailures lists the positions of relays whose Finish failed.
	RelayFailures []int      `json:"relay_failures,omitempty"`
	Metrics       RunMetrics `json:"metrics"`
}

// Status returns the status label of the run.
func (r Result) Status() string {
	switch {
	case r.Completed:
		return StatusCompleted
	case r.Abandoned:
		return StatusAbandoned
	case r.SourceErr != nil || r.SinkErr != nil:
		return StatusFailed
	default:
		return StatusIncomplete
	}
}

// Run drives the pipeline: initialize relays and the sink, pump atoms from
// the source through the relays into the sink, then close the source,
// finish the relays and close the sink. The returned error is the sink
// error, else the source error, else a relay initialization error.
// Cancelling ctx abandons the stream; that is not an error.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if p.Source == nil || p.Sink == nil {
		return Result{}, errors.InvalidInput("pipeline needs a source and a sink")
	}
	log := p.logger().WithContext(ctx)

	rc := observability.NewRunContext(p.correlationID(), p.Path, p.Sink.Kind().Name(), p.Telemetry)
	ctx, span := rc.Start(ctx)

	if err := p.initialize(ctx); err != nil {
		p.Source.Close()
		res := p.result(Result{})
		log.Error("pipeline initialization failed", logger.Fields(logger.FieldError, err.Error()))
		rc.End(ctx, span, StatusFailed, err)
		return res, err
	}

	var res Result
	err := pipeline.Drain(p.stream(), func(ctx context.Context, a atom.Atom) error {
		if err := p.Sink.Accept(ctx, a); err != nil {
			return err
		}
		if p.OnAtom != nil {
			p.OnAtom(a)
		}
		return nil
	}).Run(ctx)

	var consumerErr *pipeline.ConsumerError
	switch {
	case err == nil:
	case stderrors.As(err, &consumerErr):
		res.SinkErr = consumerErr.Err
	default:
		res.Abandoned = true
		log.Warn("pipeline abandoned", logger.Fields(logger.FieldError, err.Error()))
	}

	completed, srcErr := p.Source.Close()
	res.SourceErr = srcErr
	for i, r := range p.Relays {
		if !r.Finish() {
			res.RelayFailures = append(res.RelayFailures, i)
		}
	}
	p.Sink.Close(context.WithoutCancel(ctx))

	res = p.result(res)
	res.Completed = completed && !res.Abandoned && res.SinkErr == nil && len(res.RelayFailures) == 0 &&
		res.Metrics.Sink.Status != metrics.Failed

	runErr := res.SinkErr
	if runErr == nil {
		runErr = res.SourceErr
	}
	p.record(ctx, res)
	log.Info("pipeline finished", logger.Fields(
		logger.FieldStatus, res.Status(),
		logger.FieldRecords, res.Metrics.Sink.RecordCount,
		logger.FieldBytes, res.Metrics.Sink.ByteCount,
		logger.FieldDuration, rc.Duration().Milliseconds(),
	))
	rc.End(ctx, span, res.Status(), runErr)
	return res, runErr
}

func (p *Pipeline) initialize(ctx context.Context) error {
	for i, r := range p.Relays {
		var cfg relay.Config
		if i < len(p.RelayConfigs) {
			cfg = p.RelayConfigs[i]
		}
		if err := r.Initialize(cfg); err != nil {
			return err
		}
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanSinkInit)
	defer span.End()
	if err := p.Sink.Initialize(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// stream builds source atoms, optionally framed by task atoms, threaded
// through the relay chain.
func (p *Pipeline) stream() *pipeline.Pipeline[atom.Atom] {
	atoms := pipeline.From(source.Iter(p.Source))
	if p.Task != nil {
		atoms = pipeline.Concat(
			pipeline.FromSlice([]atom.Atom{atom.NewStartTask(*p.Task)}),
			atoms,
			pipeline.FromSlice([]atom.Atom{atom.NewFinishTask()}),
		)
	}
	if len(p.Relays) == 0 {
		return atoms
	}
	return pipeline.FilterMap(atoms, func(_ context.Context, a atom.Atom) (atom.Atom, bool, error) {
		out, ok := relay.Chain(p.Relays, a)
		return out, ok, nil
	})
}

func (p *Pipeline) result(res Result) Result {
	m := RunMetrics{Source: p.Source.Metrics(), Sink: p.Sink.Metrics()}
	all := []metrics.ComponentMetrics{m.Source, m.Sink}
	for _, r := range p.Relays {
		rm := r.Metrics()
		m.Relays = append(m.Relays, rm)
		all = append(all, rm)
	}
	m.Total = metrics.Sum(all...)
	res.Metrics = m
	return res
}

func (p *Pipeline) record(ctx context.Context, res Result) {
	if p.Telemetry == nil {
		return
	}
	p.Telemetry.RecordStage(ctx, "source", res.Metrics.Source)
	for _, rm := range res.Metrics.Relays {
		p.Telemetry.RecordStage(ctx, "relay", rm)
	}
	p.Telemetry.RecordStage(ctx, "sink", res.Metrics.Sink)
}

func (p *Pipeline) logger() *logger.Logger {
	l := p.Logger
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return l.WithComponent("engine").WithFields(logger.Fields(
		logger.FieldSource, string(p.Source.Type()),
		logger.FieldSink, p.Sink.Kind().Name(),
	))
}

func (p *Pipeline) correlationID() string {
	if p.Task != nil {
		return p.Task.CorrelationID.String()
	}
	return ""
}
