package source

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

type stringState struct {
	reader      *csv.Reader
	needsHeader bool
}

// CsvStringSource decodes whole records with encoding/csv and emits
// string rows. Blank lines are skipped by the decoder.
type CsvStringSource struct {
	state   State[*stringState]
	reader  io.Reader
	counter *countingReader

	metrics metrics.ComponentMetrics
	started time.Time
	closed  bool
	log     *logger.Logger
}

var _ Source = (*CsvStringSource)(nil)

// NewCsvStringSource reads records from r. The source owns r.
func NewCsvStringSource(r io.Reader, cfg Config, opts ...Option) *CsvStringSource {
	o := buildOptions(TypeCsvStrings, opts)

	counter := &countingReader{r: r}
	cr := csv.NewReader(counter)
	cr.Comma = rune(cfg.DelimiterByte())
	cr.FieldsPerRecord = -1
	if c, ok := cfg.CommentByte(); ok {
		cr.Comment = rune(c)
	}

	s := &CsvStringSource{
		state:   NewState(&stringState{reader: cr, needsHeader: cfg.HasHeader}),
		reader:  r,
		counter: counter,
		metrics: metrics.New(o.ids.Next()),
		started: time.Now(),
		log:     o.log,
	}
	s.metrics.Activate()
	return s
}

// OpenCsvStringSource opens the file at cfg.Path.
func OpenCsvStringSource(cfg Config, opts ...Option) (*CsvStringSource, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, errors.FromIO(err)
	}
	return NewCsvStringSource(f, cfg, opts...), nil
}

func (s *CsvStringSource) Type() Type { return TypeCsvStrings }

func (s *CsvStringSource) Next() (atom.Atom, bool) {
	if s.closed {
		return nil, false
	}
	inner, ok := s.state.Inner()
	if !ok {
		return nil, false
	}
	st := *inner

	record, err := st.reader.Read()
	s.syncBytes()
	if err == io.EOF {
		s.state.Complete()
		s.metrics.Complete()
		s.metrics.SetDuration(time.Since(s.started))
		return nil, false
	}
	if err != nil {
		var parseErr *csv.ParseError
		if stderrors.As(err, &parseErr) {
			return s.fail(errors.Parse(parseErr.Error()).WithCause(err))
		}
		return s.fail(errors.FromIO(err))
	}

	row := atom.NewStringRow(record...)
	if st.needsHeader {
		st.needsHeader = false
		return s.emit(atom.NewHeader(row))
	}
	s.metrics.AddRecords(1)
	return s.emit(atom.NewStringRowAtom(row))
}

func (s *CsvStringSource) syncBytes() {
	s.metrics.ByteCount = s.counter.n
}

func (s *CsvStringSource) emit(a atom.Atom) (atom.Atom, bool) {
	s.metrics.IncrementMessages()
	return a, true
}

func (s *CsvStringSource) fail(err *errors.AppError) (atom.Atom, bool) {
	s.state.Break(err)
	s.metrics.Fail()
	s.metrics.IncrementErrors()
	s.metrics.SetDuration(time.Since(s.started))
	s.log.Error("source broken", logger.Fields(logger.FieldError, err.Error()))
	return s.emit(atom.NewError(err))
}

func (s *CsvStringSource) Close() (bool, error) {
	if !s.closed {
		s.closed = true
		closeReader(s.reader, s.log)
		if s.state.Phase() == Ready {
			s.metrics.SetDuration(time.Since(s.started))
		}
	}
	return closeResult(&s.state)
}

func (s *CsvStringSource) Metrics() metrics.ComponentMetrics { return s.metrics }

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}
