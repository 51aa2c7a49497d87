package source

import (
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

type vectorState struct {
	atoms   []atom.Atom
	next    int
	pending *errors.AppError
}

// VectorSource replays atoms held in memory. It is mostly useful for tests
// and for feeding pre-built streams into a pipeline.
type VectorSource struct {
	state   State[*vectorState]
	metrics metrics.ComponentMetrics
	started time.Time
	closed  bool
	log     *logger.Logger
}

var _ Source = (*VectorSource)(nil)

// NewVectorSource replays atoms in order.
func NewVectorSource(atoms []atom.Atom, opts ...Option) *VectorSource {
	return newVector(&vectorState{atoms: atoms}, opts)
}

// NewBrokenVectorSource emits one error atom for err and then ends. Close
// reports err.
func NewBrokenVectorSource(err error, opts ...Option) *VectorSource {
	appErr := errors.Wrap(err)
	if appErr == nil {
		appErr = errors.General("vector source built broken without an error")
	}
	return newVector(&vectorState{pending: appErr}, opts)
}

func newVector(st *vectorState, opts []Option) *VectorSource {
	o := buildOptions(TypeVector, opts)
	s := &VectorSource{
		state:   NewState(st),
		metrics: metrics.New(o.ids.Next()),
		started: time.Now(),
		log:     o.log,
	}
	s.metrics.Activate()
	return s
}

func (s *VectorSource) Type() Type { return TypeVector }

func (s *VectorSource) Next() (atom.Atom, bool) {
	if s.closed {
		return nil, false
	}
	inner, ok := s.state.Inner()
	if !ok {
		return nil, false
	}
	st := *inner

	if st.pending != nil {
		err := st.pending
		s.state.Break(err)
		s.metrics.Fail()
		s.metrics.IncrementErrors()
		s.metrics.IncrementMessages()
		s.metrics.SetDuration(time.Since(s.started))
		return atom.NewError(err), true
	}

	if st.next >= len(st.atoms) {
		s.state.Complete()
		s.metrics.Complete()
		s.metrics.SetDuration(time.Since(s.started))
		return nil, false
	}
	a := st.atoms[st.next]
	st.next++
	s.metrics.IncrementMessages()
	if a.Kind() == atom.Data {
		s.metrics.AddRecords(1)
	}
	return a, true
}

// Close surfaces the build error even when the error atom was never pulled.
func (s *VectorSource) Close() (bool, error) {
	if !s.closed {
		s.closed = true
		if s.state.Phase() == Ready {
			s.metrics.SetDuration(time.Since(s.started))
		}
	}
	if inner, ok := s.state.Inner(); ok && (*inner).pending != nil {
		return false, (*inner).pending
	}
	return closeResult(&s.state)
}

func (s *VectorSource) Metrics() metrics.ComponentMetrics { return s.metrics }
