package relay

import (
	"maps"
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

// StatisticsRelay counts atoms by type and passes them on unchanged.
type StatisticsRelay struct {
	log     *logger.Logger
	metrics metrics.ComponentMetrics
	counts  map[atom.Type]uint64
	fields  uint64
	started time.Time
}

var _ Relay = (*StatisticsRelay)(nil)

// NewStatisticsRelay creates a statistics relay.
func NewStatisticsRelay(opts ...Option) *StatisticsRelay {
	o := buildOptions(NameStatistics, opts)
	return &StatisticsRelay{
		log:     o.log,
		metrics: metrics.New(o.ids.Next()),
		counts:  make(map[atom.Type]uint64),
	}
}

func (r *StatisticsRelay) Initialize(cfg Config) error {
	r.started = time.Now()
	r.metrics.Activate()
	return nil
}

func (r *StatisticsRelay) Accept(a atom.Atom) (atom.Atom, bool) {
	r.counts[a.Type()]++
	r.metrics.IncrementMessages()
	switch v := a.(type) {
	case *atom.ByteRowAtom:
		r.metrics.AddRecords(1)
		r.metrics.AddBytes(uint64(len(v.Row.Bytes())))
		r.fields += uint64(v.Row.Count())
	case *atom.StringRowAtom:
		r.metrics.AddRecords(1)
		r.fields += uint64(v.Row.Count())
	case *atom.NameValuesAtom:
		r.metrics.AddRecords(1)
		r.fields += uint64(v.Values.Len())
	case *atom.ErrorAtom:
		r.metrics.IncrementErrors()
	}
	return a, true
}

func (r *StatisticsRelay) Finish() bool {
	r.metrics.Complete()
	r.metrics.SetDuration(time.Since(r.started))
	f := logger.Fields(
		logger.FieldRecords, r.metrics.RecordCount,
		"fields", r.fields,
		"errors", r.metrics.ErrorCount,
	)
	for t, n := range r.counts {
		f["count_"+string(t)] = n
	}
	r.log.Info("statistics", f)
	return true
}

// Counts returns a copy of the per-type atom counts.
func (r *StatisticsRelay) Counts() map[atom.Type]uint64 {
	return maps.Clone(r.counts)
}

// FieldCount returns the number of fields seen across all data rows.
func (r *StatisticsRelay) FieldCount() uint64 { return r.fields }

func (r *StatisticsRelay) Metrics() metrics.ComponentMetrics { return r.metrics }
