package csvcore

// Result reports why ReadRecord returned.
type Result int

const (
	// InputEmpty means all input was consumed without finishing a record.
	// Partial state is kept; call again with more input, or with empty
	// input to signal EOF.
	InputEmpty Result = iota
	// OutputFull means the output buffer has no room for the next byte.
	OutputFull
	// OutputEndsFull means the ends buffer has no room for the next field.
	OutputEndsFull
	// Record means a complete record was written to output and ends.
	Record
	// Comment means a comment line was written to output. No ends are set.
	Comment
	// Blank means an empty line was consumed.
	Blank
	// End means EOF was reached and every record has been returned.
	End
)

func (r Result) String() string {
	switch r {
	case InputEmpty:
		return "input_empty"
	case OutputFull:
		return "output_full"
	case OutputEndsFull:
		return "output_ends_full"
	case Record:
		return "record"
	case Comment:
		return "comment"
	case Blank:
		return "blank"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// DefaultDelimiter separates fields unless overridden.
const DefaultDelimiter = ';'

type state int

const (
	stStartRecord state = iota
	stStartField
	stInField
	stInQuoted
	stQuoteInQuoted
	stInComment
	stSkipLF
	stEnd
)

// Reader is an incremental CSV tokenizer. It never allocates or reads on its
// own: the caller hands it input chunks and output space, and it resumes
// where the previous call stopped.
//
// Field ends written to the ends buffer are offsets from the start of the
// current record, so a caller that keeps appending to the same output and
// ends buffers across InputEmpty results gets a complete row when Record is
// returned.
type Reader struct {
	delimiter  byte
	quote      byte
	comment    byte
	hasComment bool

	state  state
	recLen int
}

// Option configures a Reader.
type Option func(*Reader)

// WithDelimiter sets the field delimiter.
func WithDelimiter(b byte) Option {
	return func(r *Reader) { r.delimiter = b }
}

// WithQuote sets the quote byte.
func WithQuote(b byte) Option {
	return func(r *Reader) { r.quote = b }
}

// WithComment enables comment lines starting with b.
func WithComment(b byte) Option {
	return func(r *Reader) {
		r.comment = b
		r.hasComment = true
	}
}

// NewReader creates a tokenizer with a ';' delimiter and '"' quotes.
func NewReader(opts ...Option) *Reader {
	r := &Reader{delimiter: DefaultDelimiter, quote: '"'}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Delimiter returns the configured field delimiter.
func (r *Reader) Delimiter() byte { return r.delimiter }

// Reset returns the reader to the start-of-input state.
func (r *Reader) Reset() {
	r.state = stStartRecord
	r.recLen = 0
}

// ReadRecord tokenizes input into output and ends. nin, nout and nend are
// the number of bytes consumed, bytes written and field ends written by
// this call. An empty input signals EOF: a pending record is flushed as
// Record and the following call returns End.
func (r *Reader) ReadRecord(input, output []byte, ends []int) (res Result, nin, nout, nend int) {
	if len(input) == 0 {
		return r.finish(ends)
	}

	for nin < len(input) {
		b := input[nin]
		switch r.state {
		case stEnd:
			return End, nin, nout, nend

		case stSkipLF:
			r.state = stStartRecord
			if b == '\n' {
				nin++
			}

		case stStartRecord:
			switch {
			case b == '\n':
				nin++
				r.recLen = 0
				return Blank, nin, nout, nend
			case b == '\r':
				nin++
				r.recLen = 0
				r.state = stSkipLF
				return Blank, nin, nout, nend
			case r.hasComment && b == r.comment:
				nin++
				r.state = stInComment
			default:
				r.state = stStartField
			}

		case stStartField:
			switch b {
			case r.quote:
				nin++
				r.state = stInQuoted
			default:
				r.state = stInField
			}

		case stInField, stQuoteInQuoted:
			if r.state == stQuoteInQuoted && b == r.quote {
				if nout == len(output) {
					return OutputFull, nin, nout, nend
				}
				output[nout] = r.quote
				nout++
				r.recLen++
				nin++
				r.state = stInQuoted
				continue
			}
			switch b {
			case r.delimiter:
				if nend == len(ends) {
					return OutputEndsFull, nin, nout, nend
				}
				ends[nend] = r.recLen
				nend++
				nin++
				r.state = stStartField
			case '\n', '\r':
				if nend == len(ends) {
					return OutputEndsFull, nin, nout, nend
				}
				ends[nend] = r.recLen
				nend++
				nin++
				r.endRecord(b)
				return Record, nin, nout, nend
			default:
				if nout == len(output) {
					return OutputFull, nin, nout, nend
				}
				output[nout] = b
				nout++
				r.recLen++
				nin++
				r.state = stInField
			}

		case stInQuoted:
			if b == r.quote {
				nin++
				r.state = stQuoteInQuoted
				continue
			}
			if nout == len(output) {
				return OutputFull, nin, nout, nend
			}
			output[nout] = b
			nout++
			r.recLen++
			nin++

		case stInComment:
			if b == '\n' || b == '\r' {
				nin++
				r.endRecord(b)
				return Comment, nin, nout, nend
			}
			if nout == len(output) {
				return OutputFull, nin, nout, nend
			}
			output[nout] = b
			nout++
			r.recLen++
			nin++
		}
	}

	if r.state == stEnd {
		return End, nin, nout, nend
	}
	return InputEmpty, nin, nout, nend
}

func (r *Reader) endRecord(terminator byte) {
	r.recLen = 0
	if terminator == '\r' {
		r.state = stSkipLF
	} else {
		r.state = stStartRecord
	}
}

func (r *Reader) finish(ends []int) (Result, int, int, int) {
	switch r.state {
	case stStartRecord, stSkipLF, stEnd:
		r.state = stEnd
		return End, 0, 0, 0
	case stInComment:
		r.recLen = 0
		r.state = stStartRecord
		return Comment, 0, 0, 0
	default:
		if len(ends) == 0 {
			return OutputEndsFull, 0, 0, 0
		}
		ends[0] = r.recLen
		r.recLen = 0
		r.state = stStartRecord
		return Record, 0, 0, 1
	}
}
