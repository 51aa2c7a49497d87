package sink

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
)

// JsonSink writes a JSON array holding one object per record, keyed by
// the header fields in header order.
type JsonSink struct {
	lifecycle
	settings JsonSettings
	schema   schema
	file     *os.File
	w        *bufio.Writer
	written  int
}

var _ Sink = (*JsonSink)(nil)

// NewJsonSink creates a JSON sink. The file is created by Initialize.
func NewJsonSink(settings JsonSettings, opts ...Option) *JsonSink {
	return &JsonSink{lifecycle: newLifecycle(Json, buildOptions(Json, opts)), settings: settings}
}

func (s *JsonSink) Initialize(context.Context) error {
	if err := s.open(); err != nil {
		return err
	}
	if dir := filepath.Dir(s.settings.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return s.reject(errors.FromIO(err).WithDetail("path", s.settings.Path))
		}
	}
	f, err := os.Create(s.settings.Path)
	if err != nil {
		return s.reject(errors.FromIO(err).WithDetail("path", s.settings.Path))
	}
	s.file = f
	s.w = bufio.NewWriter(f)
	s.schema = schema{}
	s.written = 0
	return nil
}

func (s *JsonSink) Accept(_ context.Context, a atom.Atom) error {
	if handled, err := s.guard(a); handled {
		return err
	}
	switch v := a.(type) {
	case *atom.HeaderRow:
		if err := s.schema.setHeader(v.Row.Fields()); err != nil {
			return s.fail(err)
		}
		return nil
	case *atom.Comment, *atom.BlankLine:
		return nil
	}

	nv, err := s.schema.record(a)
	if err != nil {
		return s.fail(err)
	}
	obj, err := jsonObject(nv, s.settings.Pretty)
	if err != nil {
		return s.fail(errors.General("encode record: " + err.Error()).WithCause(err))
	}
	if err := s.writeElement(obj); err != nil {
		return s.fail(errors.FromIO(err).WithDetail("path", s.settings.Path))
	}
	s.metrics.AddRecords(1)
	s.metrics.AddBytes(uint64(len(obj)))
	return nil
}

func (s *JsonSink) writeElement(obj []byte) error {
	sep := ","
	switch {
	case s.written == 0 && s.settings.Pretty:
		sep = "[\n  "
	case s.written == 0:
		sep = "["
	case s.settings.Pretty:
		sep = ",\n  "
	}
	if _, err := s.w.WriteString(sep); err != nil {
		return err
	}
	if _, err := s.w.Write(obj); err != nil {
		return err
	}
	s.written++
	return nil
}

func (s *JsonSink) Close(context.Context) {
	if !s.shut() {
		return
	}
	tail := "]\n"
	switch {
	case s.written == 0:
		tail = "[]\n"
	case s.settings.Pretty:
		tail = "\n]\n"
	}
	if _, err := s.w.WriteString(tail); err != nil {
		s.logSecondary("writing json trailer failed", err)
	}
	if err := s.w.Flush(); err != nil {
		s.logSecondary("flushing json output failed", err)
	}
	if err := s.file.Close(); err != nil {
		s.logSecondary("closing json file failed", err)
	}
	s.logClosed()
}
