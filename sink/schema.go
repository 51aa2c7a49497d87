package sink

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/database"
	"github.com/kbukum/riv/errors"
)

// schema pairs rows with the column names of the last header seen. It
// backs the sinks whose output is keyed by field name.
type schema struct {
	columns []string
}

func (s *schema) ready() bool { return len(s.columns) > 0 }

// setHeader adopts the header fields as column names.
func (s *schema) setHeader(fields []string) error {
	if len(fields) == 0 {
		return errors.General("header row is empty")
	}
	s.columns = database.ColumnNames(fields)
	return nil
}

// record pairs a data atom with the columns. A row before any header or
// with a different field count is a GENERAL error.
func (s *schema) record(a atom.Atom) (atom.NameValues, error) {
	if !s.ready() {
		return atom.NameValues{}, errors.Generalf("received %s before a header row", a.Type())
	}
	if nv, ok := a.(*atom.NameValuesAtom); ok {
		return s.named(nv.Values)
	}
	fields, ok := atom.Fields(a)
	if !ok {
		return atom.NameValues{}, errors.Generalf("%s carries no fields", a.Type())
	}
	if len(fields) != len(s.columns) {
		return atom.NameValues{}, errors.Generalf("row has %d fields but header has %d", len(fields), len(s.columns))
	}
	return atom.NewNameValuesFrom(s.columns, fields), nil
}

// named reorders a name/value record into column order. Unknown names are
// rejected; columns without a value stay empty.
func (s *schema) named(in atom.NameValues) (atom.NameValues, error) {
	values := make([]string, len(s.columns))
	index := make(map[string]int, len(s.columns))
	for i, c := range s.columns {
		index[c] = i
	}
	for i := 0; i < in.Len(); i++ {
		p, _ := in.At(i)
		pos, ok := index[p.Name]
		if !ok {
			return atom.NameValues{}, errors.Generalf("unknown column %q", p.Name)
		}
		values[pos] = p.Value
	}
	return atom.NewNameValuesFrom(s.columns, values), nil
}

// jsonObject renders nv as a JSON object keeping the field order.
func jsonObject(nv atom.NameValues, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < nv.Len(); i++ {
		p, _ := nv.At(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	if !pretty {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "  ", "  "); err != nil {
		return nil, fmt.Errorf("indent record: %w", err)
	}
	return out.Bytes(), nil
}
