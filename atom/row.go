package atom

import (
	"strings"
	"unicode/utf8"
)

// ByteRow stores one record as a contiguous byte buffer plus cumulative
// field-end offsets. Field i spans [ends[i-1], ends[i]) and field 0 starts at 0.
type ByteRow struct {
	values []byte
	ends   []int
}

// NewByteRow copies values and ends into an owned row. ends must be
// non-decreasing and bounded by len(values).
func NewByteRow(values []byte, ends []int) ByteRow {
	return ByteRow{
		values: append([]byte(nil), values...),
		ends:   append([]int(nil), ends...),
	}
}

// Count returns the number of fields.
func (r ByteRow) Count() int { return len(r.ends) }

// Get returns field i. ok is false when i is out of range.
func (r ByteRow) Get(i int) (field []byte, ok bool) {
	if i < 0 || i >= len(r.ends) {
		return nil, false
	}
	return r.values[r.start(i):r.ends[i]], true
}

// Ends returns a copy of the field-end offsets.
func (r ByteRow) Ends() []int { return append([]int(nil), r.ends...) }

// Bytes returns the backing buffer.
func (r ByteRow) Bytes() []byte { return r.values }

// ToStringRow converts the row field by field. A field that is not valid
// UTF-8 becomes the empty string.
func (r ByteRow) ToStringRow() StringRow {
	var b strings.Builder
	b.Grow(len(r.values))
	ends := make([]int, len(r.ends))
	for i := range r.ends {
		field := r.values[r.start(i):r.ends[i]]
		if utf8.Valid(field) {
			b.Write(field)
		}
		ends[i] = b.Len()
	}
	return StringRow{values: b.String(), ends: ends}
}

func (r ByteRow) start(i int) int {
	if i == 0 {
		return 0
	}
	return r.ends[i-1]
}

// StringRow stores one record as a contiguous string plus cumulative
// field-end offsets, with the same layout as ByteRow.
type StringRow struct {
	values string
	ends   []int
}

// NewStringRow builds a row from individual fields.
func NewStringRow(fields ...string) StringRow {
	var b strings.Builder
	ends := make([]int, len(fields))
	for i, f := range fields {
		b.WriteString(f)
		ends[i] = b.Len()
	}
	return StringRow{values: b.String(), ends: ends}
}

// Count returns the number of fields.
func (r StringRow) Count() int { return len(r.ends) }

// Get returns field i. ok is false when i is out of range.
func (r StringRow) Get(i int) (field string, ok bool) {
	if i < 0 || i >= len(r.ends) {
		return "", false
	}
	start := 0
	if i > 0 {
		start = r.ends[i-1]
	}
	return r.values[start:r.ends[i]], true
}

// Ends returns a copy of the field-end offsets.
func (r StringRow) Ends() []int { return append([]int(nil), r.ends...) }

// Fields returns every field in order.
func (r StringRow) Fields() []string {
	out := make([]string, len(r.ends))
	for i := range r.ends {
		out[i], _ = r.Get(i)
	}
	return out
}

// String joins the fields with commas, for logs and console output.
func (r StringRow) String() string {
	return strings.Join(r.Fields(), ",")
}
