package relay

import (
	"strings"
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

var knownTypes = map[atom.Type]bool{
	atom.TypeStartTask:  true,
	atom.TypeFinishTask: true,
	atom.TypeError:      true,
	atom.TypeByteRow:    true,
	atom.TypeStringRow:  true,
	atom.TypeNameValues: true,
	atom.TypeHeader:     true,
	atom.TypeComment:    true,
	atom.TypeBlankLine:  true,
}

// FilterRelay drops atoms whose kind or type is listed in Config.Drop.
type FilterRelay struct {
	log     *logger.Logger
	metrics metrics.ComponentMetrics
	kinds   map[atom.Kind]bool
	types   map[atom.Type]bool
	dropped uint64
	started time.Time
}

var _ Relay = (*FilterRelay)(nil)

// NewFilterRelay creates a filter relay. It drops nothing until
// initialized.
func NewFilterRelay(opts ...Option) *FilterRelay {
	o := buildOptions(NameFilter, opts)
	return &FilterRelay{
		log:     o.log,
		metrics: metrics.New(o.ids.Next()),
		kinds:   map[atom.Kind]bool{},
		types:   map[atom.Type]bool{},
	}
}

// Initialize reads the drop list. Each entry is a kind name or an atom
// type name; anything else is INVALID_CONFIG.
func (r *FilterRelay) Initialize(cfg Config) error {
	for _, name := range cfg.Drop {
		name = strings.ToLower(strings.TrimSpace(name))
		if k, ok := atom.ParseKind(name); ok {
			r.kinds[k] = true
			continue
		}
		if t := atom.Type(name); knownTypes[t] {
			r.types[t] = true
			continue
		}
		return errors.InvalidConfig("drop", "unknown atom kind or type "+name)
	}
	r.started = time.Now()
	r.metrics.Activate()
	return nil
}

func (r *FilterRelay) Accept(a atom.Atom) (atom.Atom, bool) {
	r.metrics.IncrementMessages()
	if r.kinds[a.Kind()] || r.types[a.Type()] {
		r.dropped++
		return nil, false
	}
	if a.Kind() == atom.Data {
		r.metrics.AddRecords(1)
	}
	return a, true
}

func (r *FilterRelay) Finish() bool {
	r.metrics.Complete()
	r.metrics.SetDuration(time.Since(r.started))
	r.log.Debug("relay finished", logger.Fields("dropped", r.dropped))
	return true
}

// Dropped returns the number of atoms removed.
func (r *FilterRelay) Dropped() uint64 { return r.dropped }

func (r *FilterRelay) Metrics() metrics.ComponentMetrics { return r.metrics }
