package atom

import (
	"github.com/kbukum/riv/errors"
)

// Kind classifies an Atom for downstream filtering.
type Kind int

const (
	Control Kind = iota
	Data
	Metadata
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Control:
		return "control"
	case Data:
		return "data"
	case Metadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "control":
		return Control, true
	case "data":
		return Data, true
	case "metadata":
		return Metadata, true
	default:
		return 0, false
	}
}

// Type names the concrete Atom variant.
type Type string

const (
	TypeStartTask  Type = "start_task"
	TypeFinishTask Type = "finish_task"
	TypeError      Type = "error"
	TypeByteRow    Type = "byte_row"
	TypeStringRow  Type = "string_row"
	TypeNameValues Type = "name_values"
	TypeHeader     Type = "header"
	TypeComment    Type = "comment"
	TypeBlankLine  Type = "blank"
)

// Atom is one element of the stream exchanged between pipeline stages.
// The set of implementations is closed.
type Atom interface {
	Kind() Kind
	Type() Type
	sealed()
}

// StartTask opens a task and carries the provenance of its input.
type StartTask struct {
	Task TaskMetadata
}

func (*StartTask) Kind() Kind { return Control }
func (*StartTask) Type() Type { return TypeStartTask }
func (*StartTask) sealed()    {}

// FinishTask closes the task opened by StartTask.
type FinishTask struct{}

func (*FinishTask) Kind() Kind { return Control }
func (*FinishTask) Type() Type { return TypeFinishTask }
func (*FinishTask) sealed()    {}

// ErrorAtom carries a failure through the same channel as data.
type ErrorAtom struct {
	Err *errors.AppError
}

func (*ErrorAtom) Kind() Kind { return Control }
func (*ErrorAtom) Type() Type { return TypeError }
func (*ErrorAtom) sealed()    {}

// ByteRowAtom is one positional record backed by raw bytes.
type ByteRowAtom struct {
	Row ByteRow
}

func (*ByteRowAtom) Kind() Kind { return Data }
func (*ByteRowAtom) Type() Type { return TypeByteRow }
func (*ByteRowAtom) sealed()    {}

// StringRowAtom is one positional record backed by a string.
type StringRowAtom struct {
	Row StringRow
}

func (*StringRowAtom) Kind() Kind { return Data }
func (*StringRowAtom) Type() Type { return TypeStringRow }
func (*StringRowAtom) sealed()    {}

// NameValuesAtom is one record whose natural unit is key-value pairs.
type NameValuesAtom struct {
	Values NameValues
}

func (*NameValuesAtom) Kind() Kind { return Data }
func (*NameValuesAtom) Type() Type { return TypeNameValues }
func (*NameValuesAtom) sealed()    {}

// HeaderRow names the fields of the rows that follow.
type HeaderRow struct {
	Row StringRow
}

func (*HeaderRow) Kind() Kind { return Metadata }
func (*HeaderRow) Type() Type { return TypeHeader }
func (*HeaderRow) sealed()    {}

// Comment is a comment line from the input.
type Comment struct {
	Text string
}

func (*Comment) Kind() Kind { return Metadata }
func (*Comment) Type() Type { return TypeComment }
func (*Comment) sealed()    {}

// BlankLine marks an empty input line.
type BlankLine struct{}

func (*BlankLine) Kind() Kind { return Metadata }
func (*BlankLine) Type() Type { return TypeBlankLine }
func (*BlankLine) sealed()    {}

// --- Constructors ---

// NewStartTask wraps task metadata.
func NewStartTask(task TaskMetadata) *StartTask { return &StartTask{Task: task} }

// NewFinishTask returns an end-of-task atom.
func NewFinishTask() *FinishTask { return &FinishTask{} }

// NewError wraps err, converting foreign errors with errors.Wrap.
func NewError(err error) *ErrorAtom { return &ErrorAtom{Err: errors.Wrap(err)} }

// NewByteRowAtom wraps a byte row.
func NewByteRowAtom(row ByteRow) *ByteRowAtom { return &ByteRowAtom{Row: row} }

// NewStringRowAtom wraps a string row.
func NewStringRowAtom(row StringRow) *StringRowAtom { return &StringRowAtom{Row: row} }

// NewNameValues wraps name/value pairs.
func NewNameValues(nv NameValues) *NameValuesAtom { return &NameValuesAtom{Values: nv} }

// NewHeader wraps header field names.
func NewHeader(row StringRow) *HeaderRow { return &HeaderRow{Row: row} }

// NewComment wraps comment text.
func NewComment(text string) *Comment { return &Comment{Text: text} }

// NewBlankLine returns a blank-line atom.
func NewBlankLine() *BlankLine { return &BlankLine{} }

// Fields returns the positional values of a row-like atom: data rows and
// headers. ok is false for every other atom.
func Fields(a Atom) (fields []string, ok bool) {
	switch v := a.(type) {
	case *ByteRowAtom:
		return v.Row.ToStringRow().Fields(), true
	case *StringRowAtom:
		return v.Row.Fields(), true
	case *HeaderRow:
		return v.Row.Fields(), true
	default:
		return nil, false
	}
}
