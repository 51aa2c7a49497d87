package csvcore

import (
	"fmt"
	"reflect"
	"testing"
)

type event struct {
	kind   Result
	fields []string
}

// drive feeds input in chunks of size chunk and collects every emitted
// record, comment and blank line until End.
func drive(t *testing.T, r *Reader, input string, chunk int) []event {
	t.Helper()
	out := make([]byte, 1024)
	ends := make([]int, 64)
	var events []event
	outPos, endPos := 0, 0
	data := []byte(input)
	eof := false

	for steps := 0; steps < 10000; steps++ {
		var in []byte
		if len(data) > 0 {
			n := min(chunk, len(data))
			in = data[:n]
		} else {
			eof = true
		}
		res, nin, nout, nend := r.ReadRecord(in, out[outPos:], ends[endPos:])
		data = data[nin:]
		outPos += nout
		endPos += nend

		switch res {
		case InputEmpty:
			if eof {
				t.Fatal("InputEmpty at EOF")
			}
		case Record:
			events = append(events, event{Record, split(out[:outPos], ends[:endPos])})
			outPos, endPos = 0, 0
		case Comment:
			events = append(events, event{Comment, []string{string(out[:outPos])}})
			outPos, endPos = 0, 0
		case Blank:
			events = append(events, event{kind: Blank})
		case End:
			return events
		default:
			t.Fatalf("unexpected result %s", res)
		}
	}
	t.Fatal("tokenizer did not terminate")
	return nil
}

func split(values []byte, ends []int) []string {
	fields := make([]string, len(ends))
	start := 0
	for i, e := range ends {
		fields[i] = string(values[start:e])
		start = e
	}
	return fields
}

func records(events []event) [][]string {
	var out [][]string
	for _, e := range events {
		if e.kind == Record {
			out = append(out, e.fields)
		}
	}
	return out
}

func TestReadRecord_Basic(t *testing.T) {
	got := records(drive(t, NewReader(), "h1;h2\nv1;v2", 64))
	want := [][]string{{"h1", "h2"}, {"v1", "v2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReadRecord_ChunkBoundaries(t *testing.T) {
	input := "name;city\n\"Doe, Jane\";\"Oslo \"\"N\"\"\"\r\nbob;;\n"
	want := [][]string{{"name", "city"}, {"Doe, Jane", `Oslo "N"`}, {"bob", "", ""}}
	for chunk := 1; chunk <= len(input); chunk++ {
		t.Run(fmt.Sprintf("chunk=%d", chunk), func(t *testing.T) {
			got := records(drive(t, NewReader(), input, chunk))
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestReadRecord_Empty(t *testing.T) {
	if got := drive(t, NewReader(), "", 8); len(got) != 0 {
		t.Errorf("expected no events, got %v", got)
	}
}

func TestReadRecord_TrailingDelimiterAtEOF(t *testing.T) {
	got := records(drive(t, NewReader(), "a;", 8))
	want := [][]string{{"a", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadRecord_CRLF(t *testing.T) {
	events := drive(t, NewReader(WithDelimiter(',')), "a,b\r\nc,d\r\n", 3)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if !reflect.DeepEqual(events[1].fields, []string{"c", "d"}) {
		t.Errorf("got %v", events[1].fields)
	}
}

func TestReadRecord_BlankLines(t *testing.T) {
	events := drive(t, NewReader(), "a\n\n\r\nb\n", 64)
	var kinds []Result
	for _, e := range events {
		kinds = append(kinds, e.kind)
	}
	want := []Result{Record, Blank, Blank, Record}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("got %v, want %v", kinds, want)
	}
}

func TestReadRecord_Comments(t *testing.T) {
	events := drive(t, NewReader(WithComment('#')), "# header comment\na;b\n#tail", 4)
	if len(events) != 3 {
		t.Fatalf("got %d events: %v", len(events), events)
	}
	if events[0].kind != Comment || events[0].fields[0] != " header comment" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[2].kind != Comment || events[2].fields[0] != "tail" {
		t.Errorf("last event = %+v", events[2])
	}
}

func TestReadRecord_CommentDisabled(t *testing.T) {
	got := records(drive(t, NewReader(), "#a;b\n", 64))
	if len(got) != 1 || got[0][0] != "#a" {
		t.Errorf("got %q", got)
	}
}

func TestReadRecord_OutputFull(t *testing.T) {
	r := NewReader()
	out := make([]byte, 4)
	ends := make([]int, 4)
	res, nin, nout, _ := r.ReadRecord([]byte("abcdefgh\n"), out, ends)
	if res != OutputFull {
		t.Fatalf("got %s, want output_full", res)
	}
	if nin != 4 || nout != 4 {
		t.Errorf("nin=%d nout=%d, want 4 and 4", nin, nout)
	}
}

func TestReadRecord_OutputEndsFull(t *testing.T) {
	r := NewReader()
	out := make([]byte, 64)
	ends := make([]int, 2)
	res, _, _, nend := r.ReadRecord([]byte("a;b;c\n"), out, ends)
	if res != OutputEndsFull {
		t.Fatalf("got %s, want output_ends_full", res)
	}
	if nend != 2 {
		t.Errorf("nend = %d, want 2", nend)
	}
}

func TestReadRecord_EndIsSticky(t *testing.T) {
	r := NewReader()
	out := make([]byte, 8)
	ends := make([]int, 8)
	if res, _, _, _ := r.ReadRecord(nil, out, ends); res != End {
		t.Fatalf("got %s, want end", res)
	}
	if res, _, _, _ := r.ReadRecord(nil, out, ends); res != End {
		t.Errorf("got %s after End, want end", res)
	}
	r.Reset()
	if res, _, _, _ := r.ReadRecord([]byte("x\n"), out, ends); res != Record {
		t.Errorf("got %s after Reset, want record", res)
	}
}

func TestReadRecord_UnterminatedQuoteFlushed(t *testing.T) {
	got := records(drive(t, NewReader(), `a;"open`, 3))
	want := [][]string{{"a", "open"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadRecord_OffsetsNonDecreasing(t *testing.T) {
	for _, rec := range records(drive(t, NewReader(), "a;;bb;\nccc;d\n", 2)) {
		if len(rec) == 0 {
			t.Fatal("empty record")
		}
	}
	r := NewReader()
	out := make([]byte, 32)
	ends := make([]int, 8)
	_, _, _, nend := r.ReadRecord([]byte("a;;bb;\n"), out, ends)
	for i := 1; i < nend; i++ {
		if ends[i] < ends[i-1] {
			t.Errorf("ends decreasing: %v", ends[:nend])
		}
	}
	if nend != 4 {
		t.Errorf("nend = %d, want 4", nend)
	}
}

func TestResult_String(t *testing.T) {
	if Record.String() != "record" || Result(99).String() != "unknown" {
		t.Error("unexpected result names")
	}
}
