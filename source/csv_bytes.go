package source

import (
	"io"
	"os"
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/csvcore"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/metrics"
)

// Buffer sizes of CsvByteSource. A record longer than MaxRecordSize bytes
// or wider than MaxFieldsPerRecord fields breaks the source.
const (
	ChunkSize          = 8 * 1024
	MaxRecordSize      = 16 * 1024
	MaxFieldsPerRecord = 1024
)

type byteState struct {
	reader io.Reader
	tok    *csvcore.Reader

	chunk      [ChunkSize]byte
	start, end int
	eof        bool
	// readErr is a read failure that arrived together with data. It is
	// reported once that data is tokenized.
	readErr error

	output [MaxRecordSize]byte
	ends   [MaxFieldsPerRecord]int
	outPos int
	endPos int

	needsHeader bool
}

// CsvByteSource streams delimited records straight from bytes, without
// decoding fields until a consumer asks for strings.
type CsvByteSource struct {
	state          State[*byteState]
	reader         io.Reader
	reportBlank    bool
	reportComments bool

	metrics metrics.ComponentMetrics
	started time.Time
	closed  bool
	log     *logger.Logger
}

var _ Source = (*CsvByteSource)(nil)

// NewCsvByteSource reads records from r. The source owns r and closes it
// on Close when it implements io.Closer.
func NewCsvByteSource(r io.Reader, cfg Config, opts ...Option) *CsvByteSource {
	o := buildOptions(TypeCsvBytes, opts)

	tokOpts := []csvcore.Option{csvcore.WithDelimiter(cfg.DelimiterByte())}
	if c, ok := cfg.CommentByte(); ok {
		tokOpts = append(tokOpts, csvcore.WithComment(c))
	}

	s := &CsvByteSource{
		state: NewState(&byteState{
			reader:      r,
			tok:         csvcore.NewReader(tokOpts...),
			needsHeader: cfg.HasHeader,
		}),
		reader:         r,
		reportBlank:    cfg.ReportBlankLines,
		reportComments: cfg.ReportComments,
		metrics:        metrics.New(o.ids.Next()),
		started:        time.Now(),
		log:            o.log,
	}
	s.metrics.Activate()
	return s
}

// OpenCsvByteSource opens the file at cfg.Path. A missing file is an IO
// error of kind not_found.
func OpenCsvByteSource(cfg Config, opts ...Option) (*CsvByteSource, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, errors.FromIO(err)
	}
	return NewCsvByteSource(f, cfg, opts...), nil
}

func (s *CsvByteSource) Type() Type { return TypeCsvBytes }

// Next tokenizes until one atom is ready, refilling the chunk buffer as
// needed. Partial records survive refills.
func (s *CsvByteSource) Next() (atom.Atom, bool) {
	if s.closed {
		return nil, false
	}
	inner, ok := s.state.Inner()
	if !ok {
		return nil, false
	}
	b := *inner

	for {
		if b.start == b.end && !b.eof {
			if b.readErr != nil {
				return s.fail(errors.FromIO(b.readErr))
			}
			n, err := b.reader.Read(b.chunk[:])
			b.start, b.end = 0, n
			s.metrics.AddBytes(uint64(n))
			switch {
			case err == io.EOF || (err == nil && n == 0):
				b.eof = true
			case err != nil && n > 0:
				b.readErr = err
			case err != nil:
				return s.fail(errors.FromIO(err))
			}
		}

		res, nin, nout, nend := b.tok.ReadRecord(b.chunk[b.start:b.end], b.output[b.outPos:], b.ends[b.endPos:])
		b.start += nin
		b.outPos += nout
		b.endPos += nend

		switch res {
		case csvcore.Record:
			row := atom.NewByteRow(b.output[:b.outPos], b.ends[:b.endPos])
			b.outPos, b.endPos = 0, 0
			if b.needsHeader {
				b.needsHeader = false
				return s.emit(atom.NewHeader(row.ToStringRow()))
			}
			s.metrics.AddRecords(1)
			return s.emit(atom.NewByteRowAtom(row))

		case csvcore.InputEmpty:
			continue

		case csvcore.OutputFull:
			return s.fail(errors.Generalf("record exceeds %d bytes", MaxRecordSize))

		case csvcore.OutputEndsFull:
			return s.fail(errors.Generalf("record exceeds %d fields", MaxFieldsPerRecord))

		case csvcore.Comment:
			text := string(b.output[:b.outPos])
			b.outPos, b.endPos = 0, 0
			if s.reportComments {
				return s.emit(atom.NewComment(text))
			}

		case csvcore.Blank:
			b.outPos, b.endPos = 0, 0
			if s.reportBlank {
				return s.emit(atom.NewBlankLine())
			}

		case csvcore.End:
			s.state.Complete()
			s.metrics.Complete()
			s.metrics.SetDuration(time.Since(s.started))
			return nil, false
		}
	}
}

func (s *CsvByteSource) emit(a atom.Atom) (atom.Atom, bool) {
	s.metrics.IncrementMessages()
	return a, true
}

func (s *CsvByteSource) fail(err *errors.AppError) (atom.Atom, bool) {
	s.state.Break(err)
	s.metrics.Fail()
	s.metrics.IncrementErrors()
	s.metrics.SetDuration(time.Since(s.started))
	s.log.Error("source broken", logger.Fields(logger.FieldError, err.Error()))
	return s.emit(atom.NewError(err))
}

// Close reports how the source ended. Abandoning a Ready source returns
// (false, nil).
func (s *CsvByteSource) Close() (bool, error) {
	if !s.closed {
		s.closed = true
		closeReader(s.reader, s.log)
		if s.state.Phase() == Ready {
			s.metrics.SetDuration(time.Since(s.started))
		}
	}
	return closeResult(&s.state)
}

func (s *CsvByteSource) Metrics() metrics.ComponentMetrics { return s.metrics }

// closeResult maps a final phase to the Close contract.
func closeResult[S any](st *State[S]) (bool, error) {
	switch st.Phase() {
	case Completed:
		return true, nil
	case Broken:
		if err := st.Err(); err != nil {
			return false, err
		}
		return false, nil
	default:
		return false, nil
	}
}
