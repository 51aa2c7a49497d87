package engine

import (
	"context"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
	"github.com/kbukum/riv/relay"
	"github.com/kbukum/riv/sink"
	"github.com/kbukum/riv/source"
)

// Command is a request sent to a Worker.
type Command interface{ command() }

// Parse runs a file into Sink, streaming every accepted atom back as an
// AtomEvent. A nil Sink discards the output.
type Parse struct {
	Path string
	Sink sink.Settings
}

// Analyze runs a file through a statistics relay and discards the output.
type Analyze struct {
	Path string
}

// Publish runs a file into a durable sink.
type Publish struct {
	Path string
	Sink sink.Settings
}

// Quit stops the worker after the current command.
type Quit struct{}

func (Parse) command()   {}
func (Analyze) command() {}
func (Publish) command() {}
func (Quit) command()    {}

// Event is emitted by a Worker.
type Event interface{ event() }

// AtomEvent carries an atom the sink accepted during a Parse.
type AtomEvent struct {
	Atom atom.Atom
}

// MetricsEvent carries a periodic sink metrics snapshot.
type MetricsEvent struct {
	Metrics metrics.ComponentMetrics
}

// DoneEvent ends every command that reached the run stage. Counts holds
// per-type atom counts for Analyze and is nil otherwise.
type DoneEvent struct {
	Command Command
	Result  Result
	Counts  map[atom.Type]uint64
}

// ErrorEvent reports a command failure. It precedes the DoneEvent when
// the run itself failed. When the pipeline could not be built it stands
// alone and Final is set.
type ErrorEvent struct {
	Command Command
	Err     error
	Final   bool
}

func (AtomEvent) event()    {}
func (MetricsEvent) event() {}
func (DoneEvent) event()    {}
func (ErrorEvent) event()   {}

// Worker drives one pipeline at a time on its own goroutine. Commands go
// in through Commands and results come back through Events.
//
//	w := engine.NewWorker()
//	go w.Run(ctx)
//	w.Commands() <- engine.Analyze{Path: "people.csv"}
//	for ev := range w.Events() { ... }
type Worker struct {
	cmds         chan Command
	events       chan Event
	done         chan struct{}
	template     source.Config
	metricsEvery uint64
	pipelineOpts []Option
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithSourceTemplate sets the source config used for every command. Its
// Path is replaced by the command path.
func WithSourceTemplate(cfg source.Config) WorkerOption {
	return func(w *Worker) { w.template = cfg }
}

// WithMetricsEvery emits a MetricsEvent after every n accepted atoms. Zero
// disables periodic metrics.
func WithMetricsEvery(n uint64) WorkerOption {
	return func(w *Worker) { w.metricsEvery = n }
}

// WithPipelineOptions sets the options used to build each pipeline.
func WithPipelineOptions(opts ...Option) WorkerOption {
	return func(w *Worker) { w.pipelineOpts = append(w.pipelineOpts, opts...) }
}

// NewWorker creates an idle worker.
func NewWorker(opts ...WorkerOption) *Worker {
	w := &Worker{
		cmds:         make(chan Command),
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
		template:     source.DefaultConfig(""),
		metricsEvery: 1000,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Commands returns the command channel.
func (w *Worker) Commands() chan<- Command { return w.cmds }

// Events returns the event channel. It is closed when Run returns.
func (w *Worker) Events() <-chan Event { return w.events }

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Run executes commands until Quit or ctx is done. Cancelling ctx during
// a command abandons that run. Run must be called at most once.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)
	o := buildOptions(w.pipelineOpts)
	log := o.log.WithComponent("worker")
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-w.cmds:
			if _, ok := cmd.(Quit); ok {
				log.Debug("worker quit")
				return
			}
			w.execute(ctx, cmd, o, log)
		}
	}
}

func (w *Worker) execute(ctx context.Context, cmd Command, o options, log *logger.Logger) {
	p, err := w.plan(cmd, o)
	if err != nil {
		log.Warn("command rejected", logger.Fields(logger.FieldError, err.Error()))
		w.emit(ctx, ErrorEvent{Command: cmd, Err: err, Final: true})
		return
	}

	var accepted uint64
	_, streamAtoms := cmd.(Parse)
	p.OnAtom = func(a atom.Atom) {
		if streamAtoms {
			w.emit(ctx, AtomEvent{Atom: a})
		}
		accepted++
		if w.metricsEvery > 0 && accepted%w.metricsEvery == 0 {
			w.emit(ctx, MetricsEvent{Metrics: p.Sink.Metrics()})
		}
	}

	res, err := p.Run(ctx)
	if err != nil {
		w.emit(ctx, ErrorEvent{Command: cmd, Err: err})
	}
	done := DoneEvent{Command: cmd, Result: res}
	if _, ok := cmd.(Analyze); ok {
		if stats, ok := p.Relays[0].(*relay.StatisticsRelay); ok {
			done.Counts = stats.Counts()
		}
	}
	w.emit(ctx, done)
}

// plan builds the pipeline for cmd.
func (w *Worker) plan(cmd Command, o options) (*Pipeline, error) {
	cfg := w.template
	var (
		relays   []relay.Config
		settings sink.Settings
	)
	switch c := cmd.(type) {
	case Parse:
		cfg.Path = c.Path
		settings = c.Sink
		if settings == nil {
			settings = sink.DevNullSettings{}
		}
	case Analyze:
		cfg.Path = c.Path
		relays = []relay.Config{{Name: relay.NameStatistics}}
		settings = sink.DevNullSettings{}
	case Publish:
		cfg.Path = c.Path
		if c.Sink == nil || !c.Sink.CanPublish() {
			kind := "none"
			if c.Sink != nil {
				kind = c.Sink.Kind().Name()
			}
			return nil, errors.InvalidInput("sink cannot publish: " + kind)
		}
		settings = c.Sink
	default:
		return nil, errors.InvalidInput("unknown command")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(cfg, relays, settings, o)
}

// emit delivers ev unless ctx is done first.
func (w *Worker) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
