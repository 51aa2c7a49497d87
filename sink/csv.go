package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
)

// CsvSink writes headers and rows to a delimited file. Comments and blank
// lines are not reproduced.
type CsvSink struct {
	lifecycle
	settings CsvSettings
	file     *os.File
	w        *csv.Writer
}

var _ Sink = (*CsvSink)(nil)

// NewCsvSink creates a CSV sink. The file is created by Initialize.
func NewCsvSink(settings CsvSettings, opts ...Option) *CsvSink {
	return &CsvSink{lifecycle: newLifecycle(Csv, buildOptions(Csv, opts)), settings: settings}
}

func (s *CsvSink) Initialize(context.Context) error {
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
	s.w = csv.NewWriter(f)
	s.w.Comma = s.settings.DelimiterRune()
	return nil
}

func (s *CsvSink) Accept(_ context.Context, a atom.Atom) error {
	if handled, err := s.guard(a); handled {
		return err
	}
	var fields []string
	switch v := a.(type) {
	case *atom.NameValuesAtom:
		fields = v.Values.Values()
	default:
		var ok bool
		if fields, ok = atom.Fields(a); !ok {
			return nil
		}
	}
	if err := s.write(fields); err != nil {
		return s.fail(errors.FromIO(err).WithDetail("path", s.settings.Path))
	}
	s.metrics.AddBytes(recordBytes(fields))
	if a.Kind() == atom.Data {
		s.metrics.AddRecords(1)
	}
	return nil
}

// write emits one record. A record holding a single empty field is written
// as a quoted empty string, since a bare empty line reads back as blank.
func (s *CsvSink) write(fields []string) error {
	if len(fields) != 1 || fields[0] != "" {
		return s.w.Write(fields)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	_, err := s.file.WriteString("\"\"\n")
	return err
}

func (s *CsvSink) Close(context.Context) {
	if !s.shut() {
		return
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.logSecondary("flushing csv output failed", err)
	}
	if err := s.file.Close(); err != nil {
		s.logSecondary("closing csv file failed", err)
	}
	s.logClosed()
}
