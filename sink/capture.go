package sink

import (
	"context"

	"github.com/kbukum/riv/atom"
)

// CaptureSink keeps every data and metadata atom in memory until drained.
type CaptureSink struct {
	lifecycle
	atoms []atom.Atom
}

var _ Sink = (*CaptureSink)(nil)

// NewCaptureSink creates a capture sink.
func NewCaptureSink(opts ...Option) *CaptureSink {
	return &CaptureSink{lifecycle: newLifecycle(Capture, buildOptions(Capture, opts))}
}

func (s *CaptureSink) Initialize(context.Context) error {
	if err := s.open(); err != nil {
		return err
	}
	s.atoms = nil
	return nil
}

func (s *CaptureSink) Accept(_ context.Context, a atom.Atom) error {
	if handled, err := s.guard(a); handled {
		return err
	}
	if fields, ok := atom.Fields(a); ok {
		s.metrics.AddBytes(recordBytes(fields))
	}
	if a.Kind() == atom.Data {
		s.metrics.AddRecords(1)
	}
	s.atoms = append(s.atoms, a)
	return nil
}

func (s *CaptureSink) Close(context.Context) {
	if s.shut() {
		s.logClosed()
	}
}

// Len returns the number of captured atoms.
func (s *CaptureSink) Len() int { return len(s.atoms) }

// Drain returns the captured atoms in arrival order and empties the buffer.
// It works before and after Close.
func (s *CaptureSink) Drain() []atom.Atom {
	out := s.atoms
	s.atoms = nil
	return out
}
