package sink

import (
	"context"

	"github.com/kbukum/riv/atom"
)

// DevNullSink discards every atom but still counts it.
type DevNullSink struct {
	lifecycle
}

var _ Sink = (*DevNullSink)(nil)

// NewDevNullSink creates a discarding sink.
func NewDevNullSink(opts ...Option) *DevNullSink {
	return &DevNullSink{lifecycle: newLifecycle(DevNull, buildOptions(DevNull, opts))}
}

func (s *DevNullSink) Initialize(context.Context) error { return s.open() }

func (s *DevNullSink) Accept(_ context.Context, a atom.Atom) error {
	if handled, err := s.guard(a); handled {
		return err
	}
	if fields, ok := atom.Fields(a); ok {
		s.metrics.AddBytes(recordBytes(fields))
	}
	if a.Kind() == atom.Data {
		s.metrics.AddRecords(1)
	}
	return nil
}

func (s *DevNullSink) Close(context.Context) {
	if s.shut() {
		s.logClosed()
	}
}
