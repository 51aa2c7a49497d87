package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
)

// WithOutput sets where the console sink prints; stdout by default.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// ConsoleSink prints one line per atom, including error atoms.
type ConsoleSink struct {
	lifecycle
	out *bufio.Writer
	dst io.Writer
}

var _ Sink = (*ConsoleSink)(nil)

// NewConsoleSink creates a console sink.
func NewConsoleSink(opts ...Option) *ConsoleSink {
	o := buildOptions(Console, opts)
	dst := o.output
	if dst == nil {
		dst = os.Stdout
	}
	return &ConsoleSink{lifecycle: newLifecycle(Console, o), dst: dst}
}

func (s *ConsoleSink) Initialize(context.Context) error {
	if err := s.open(); err != nil {
		return err
	}
	s.out = bufio.NewWriter(s.dst)
	return nil
}

func (s *ConsoleSink) Accept(_ context.Context, a atom.Atom) error {
	handled, err := s.guard(a)
	if err != nil {
		return err
	}
	if handled {
		if e, ok := a.(*atom.ErrorAtom); ok && e.Err != nil {
			return s.print("error", e.Err.Error())
		}
		return nil
	}
	if a.Kind() == atom.Data {
		s.metrics.AddRecords(1)
	}
	switch v := a.(type) {
	case *atom.HeaderRow:
		return s.print("header", v.Row.String())
	case *atom.Comment:
		return s.print("comment", v.Text)
	case *atom.BlankLine:
		return s.print("blank", "")
	case *atom.NameValuesAtom:
		pairs := make([]string, v.Values.Len())
		for i := range pairs {
			p, _ := v.Values.At(i)
			pairs[i] = p.Name + "=" + p.Value
		}
		return s.print("values", strings.Join(pairs, ","))
	default:
		fields, _ := atom.Fields(a)
		return s.print("row", atom.NewStringRow(fields...).String())
	}
}

func (s *ConsoleSink) print(tag, text string) error {
	n, err := fmt.Fprintf(s.out, "%-7s %s\n", tag, text)
	s.metrics.AddBytes(uint64(n))
	if err != nil {
		return s.fail(errors.FromIO(err))
	}
	return nil
}

func (s *ConsoleSink) Close(context.Context) {
	if !s.shut() {
		return
	}
	if err := s.out.Flush(); err != nil {
		s.logSecondary("flushing console output failed", err)
	}
	s.logClosed()
}
