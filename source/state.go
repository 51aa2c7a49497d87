package source

import (
	"github.com/kbukum/riv/errors"
)

// Phase is the lifecycle position of a source.
type Phase int

const (
	Ready Phase = iota
	Broken
	Completed
)

func (p Phase) String() string {
	switch p {
	case Ready:
		return "ready"
	case Broken:
		return "broken"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// State is the Ready/Broken/Completed lifecycle shared by sources. The
// inner value is only reachable while Ready. Broken keeps the error that
// caused it so Close can report it.
type State[S any] struct {
	phase Phase
	inner S
	err   *errors.AppError
}

// NewState returns a Ready state wrapping inner.
func NewState[S any](inner S) State[S] {
	return State[S]{phase: Ready, inner: inner}
}

// Phase returns the current phase.
func (s *State[S]) Phase() Phase { return s.phase }

// Inner returns the wrapped value while Ready.
func (s *State[S]) Inner() (*S, bool) {
	if s.phase != Ready {
		return nil, false
	}
	return &s.inner, true
}

// Err returns the captured error while Broken.
func (s *State[S]) Err() *errors.AppError { return s.err }

// Break moves a Ready state to Broken. It returns the ErrorAtom payload
// that should be emitted, or nil if the state was not Ready.
func (s *State[S]) Break(err *errors.AppError) *errors.AppError {
	if s.phase != Ready {
		return nil
	}
	var zero S
	s.phase, s.inner, s.err = Broken, zero, err
	return err
}

// Complete moves a Ready state to Completed.
func (s *State[S]) Complete() {
	if s.phase != Ready {
		return
	}
	var zero S
	s.phase, s.inner = Completed, zero
}
