package atom

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/riv/errors"
)

func TestByteRow_CountAndGet(t *testing.T) {
	row := NewByteRow([]byte("h1h2value"), []int{2, 4, 9})
	if row.Count() != 3 {
		t.Fatalf("Count = %d, want 3", row.Count())
	}
	want := []string{"h1", "h2", "value"}
	for i, w := range want {
		got, ok := row.Get(i)
		if !ok || string(got) != w {
			t.Errorf("Get(%d) = %q, %v; want %q", i, got, ok, w)
		}
	}
}

func TestByteRow_GetOutOfRange(t *testing.T) {
	row := NewByteRow([]byte("ab"), []int{1, 2})
	for _, i := range []int{-1, 2, 100} {
		if _, ok := row.Get(i); ok {
			t.Errorf("Get(%d) should be absent", i)
		}
	}
}

func TestByteRow_EmptyFields(t *testing.T) {
	row := NewByteRow([]byte("x"), []int{0, 0, 1})
	if row.Count() != 3 {
		t.Fatalf("Count = %d", row.Count())
	}
	if f, _ := row.Get(0); len(f) != 0 {
		t.Errorf("field 0 = %q", f)
	}
	if f, _ := row.Get(2); string(f) != "x" {
		t.Errorf("field 2 = %q", f)
	}
}

func TestByteRow_OwnsBuffers(t *testing.T) {
	values := []byte("abc")
	ends := []int{1, 3}
	row := NewByteRow(values, ends)
	values[0] = 'z'
	ends[0] = 2
	if f, _ := row.Get(0); string(f) != "a" {
		t.Errorf("row shares caller buffers, field 0 = %q", f)
	}
}

func TestByteRow_EndsCopy(t *testing.T) {
	row := NewByteRow([]byte("ab"), []int{1, 2})
	e := row.Ends()
	e[0] = 0
	if f, _ := row.Get(0); string(f) != "a" {
		t.Error("Ends must return a copy")
	}
}

func TestByteRow_ToStringRow_Lossy(t *testing.T) {
	values := append([]byte("ok"), 0xff, 0xfe)
	values = append(values, []byte("fine")...)
	row := NewByteRow(values, []int{2, 4, 8})

	sr := row.ToStringRow()
	if sr.Count() != 3 {
		t.Fatalf("Count = %d, want 3", sr.Count())
	}
	got := sr.Fields()
	want := []string{"ok", "", "fine"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestByteRow_ToStringRow_Empty(t *testing.T) {
	sr := ByteRow{}.ToStringRow()
	if sr.Count() != 0 || len(sr.Fields()) != 0 {
		t.Errorf("expected empty row, got %v", sr.Fields())
	}
}

func TestStringRow_FieldsAndGet(t *testing.T) {
	row := NewStringRow("a", "", "ccc")
	if row.Count() != 3 {
		t.Fatalf("Count = %d", row.Count())
	}
	if f, ok := row.Get(2); !ok || f != "ccc" {
		t.Errorf("Get(2) = %q, %v", f, ok)
	}
	if _, ok := row.Get(3); ok {
		t.Error("Get(3) should be absent")
	}
	if row.String() != "a,,ccc" {
		t.Errorf("String = %q", row.String())
	}
}

func TestRowOffsets_NonDecreasing(t *testing.T) {
	row := NewStringRow("x", "", "yz", "")
	ends := row.Ends()
	if len(ends) != row.Count() {
		t.Fatalf("len(ends) = %d, Count = %d", len(ends), row.Count())
	}
	for i := 1; i < len(ends); i++ {
		if ends[i] < ends[i-1] {
			t.Errorf("ends not non-decreasing: %v", ends)
		}
	}
}

func TestAtom_Kinds(t *testing.T) {
	tests := []struct {
		atom Atom
		kind Kind
		typ  Type
	}{
		{NewStartTask(TaskMetadata{}), Control, TypeStartTask},
		{NewFinishTask(), Control, TypeFinishTask},
		{NewError(errors.Parse("x")), Control, TypeError},
		{NewByteRowAtom(ByteRow{}), Data, TypeByteRow},
		{NewStringRowAtom(StringRow{}), Data, TypeStringRow},
		{NewNameValues(NameValues{}), Data, TypeNameValues},
		{NewHeader(StringRow{}), Metadata, TypeHeader},
		{NewComment("# c"), Metadata, TypeComment},
		{NewBlankLine(), Metadata, TypeBlankLine},
	}
	for _, tc := range tests {
		t.Run(string(tc.typ), func(t *testing.T) {
			if tc.atom.Kind() != tc.kind {
				t.Errorf("Kind = %s, want %s", tc.atom.Kind(), tc.kind)
			}
			if tc.atom.Type() != tc.typ {
				t.Errorf("Type = %s, want %s", tc.atom.Type(), tc.typ)
			}
		})
	}
}

func TestKind_StringAndParse(t *testing.T) {
	for _, k := range []Kind{Control, Data, Metadata} {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("bogus"); ok {
		t.Error("expected unknown kind to fail")
	}
	if Kind(42).String() != "unknown" {
		t.Error("expected unknown for out-of-range kind")
	}
}

func TestNewError_WrapsForeignError(t *testing.T) {
	a := NewError(fmt.Errorf("plain"))
	if a.Err == nil || a.Err.Code != errors.ErrCodeGeneral {
		t.Errorf("expected GENERAL, got %v", a.Err)
	}
	p := errors.Parse("bad")
	if NewError(p).Err != p {
		t.Error("AppError should pass through unchanged")
	}
}

func TestFields(t *testing.T) {
	if f, ok := Fields(NewHeader(NewStringRow("h1", "h2"))); !ok || len(f) != 2 || f[1] != "h2" {
		t.Errorf("header fields = %v, %v", f, ok)
	}
	if f, ok := Fields(NewByteRowAtom(NewByteRow([]byte("v1v2"), []int{2, 4}))); !ok || f[0] != "v1" {
		t.Errorf("byte row fields = %v, %v", f, ok)
	}
	if f, ok := Fields(NewStringRowAtom(NewStringRow("a"))); !ok || f[0] != "a" {
		t.Errorf("string row fields = %v, %v", f, ok)
	}
	if _, ok := Fields(NewFinishTask()); ok {
		t.Error("control atoms have no fields")
	}
}

func TestNameValues(t *testing.T) {
	nv := NewNameValuesFrom([]string{"id", "name", "extra"}, []string{"1", "ada"})
	if nv.Len() != 3 {
		t.Fatalf("Len = %d", nv.Len())
	}
	if v, ok := nv.Get("name"); !ok || v != "ada" {
		t.Errorf("Get(name) = %q, %v", v, ok)
	}
	if v, ok := nv.Get("extra"); !ok || v != "" {
		t.Errorf("missing value should be empty, got %q, %v", v, ok)
	}
	if _, ok := nv.Get("nope"); ok {
		t.Error("unknown name should be absent")
	}
	nv.Add("id", "2")
	if v, _ := nv.Get("id"); v != "1" {
		t.Errorf("Get returns first duplicate, got %q", v)
	}
	if p, ok := nv.At(3); !ok || p.Value != "2" {
		t.Errorf("At(3) = %v, %v", p, ok)
	}
	if _, ok := nv.At(4); ok {
		t.Error("At(4) should be absent")
	}
	if names := nv.Names(); len(names) != 4 || names[0] != "id" {
		t.Errorf("Names = %v", names)
	}
	if vals := nv.Values(); vals[1] != "ada" {
		t.Errorf("Values = %v", vals)
	}
}

func TestNewTaskMetadata(t *testing.T) {
	a := NewTaskMetadata("csv_bytes", "in.csv", "abc", 10)
	b := NewTaskMetadata("csv_bytes", "in.csv", "abc", 10)
	if a.CorrelationID == uuid.Nil {
		t.Error("expected a correlation id")
	}
	if a.CorrelationID == b.CorrelationID {
		t.Error("expected distinct correlation ids")
	}
	if a.Origin != "csv_bytes" || a.Name != "in.csv" || a.SHA256 != "abc" || a.ByteCount != 10 {
		t.Errorf("unexpected metadata %+v", a)
	}
}
