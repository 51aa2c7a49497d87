package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/component"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/sink"
)

func startWorker(t *testing.T, opts ...WorkerOption) (*Worker, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	opts = append([]WorkerOption{WithPipelineOptions(WithLogger(logger.NewNop()), WithIDGenerator(component.NewIDGenerator()))}, opts...)
	w := NewWorker(opts...)
	go w.Run(ctx)
	t.Cleanup(cancel)
	return w, cancel
}

// collect reads events up to and including the last event of a command.
func collect(t *testing.T, w *Worker) []Event {
	t.Helper()
	var out []Event
	for ev := range w.Events() {
		out = append(out, ev)
		switch e := ev.(type) {
		case DoneEvent:
			return out
		case ErrorEvent:
			if e.Final {
				return out
			}
		}
	}
	t.Fatal("event channel closed before the command finished")
	return nil
}

func TestWorker_Parse(t *testing.T) {
	in := writeInput(t, "id;name\n1;ada\n2;grace\n")
	w, _ := startWorker(t, WithMetricsEvery(2))
	w.Commands() <- Parse{Path: in}

	var atoms, snapshots int
	var done DoneEvent
	for _, ev := range collect(t, w) {
		switch e := ev.(type) {
		case AtomEvent:
			atoms++
		case MetricsEvent:
			snapshots++
		case DoneEvent:
			done = e
		case ErrorEvent:
			t.Fatalf("unexpected error %v", e.Err)
		}
	}
	if atoms != 3 {
		t.Errorf("atom events = %d, want 3", atoms)
	}
	if snapshots != 1 {
		t.Errorf("metrics events = %d, want 1", snapshots)
	}
	if !done.Result.Completed || done.Counts != nil {
		t.Errorf("done = %+v", done)
	}
	if _, ok := done.Command.(Parse); !ok {
		t.Errorf("done command = %T", done.Command)
	}
}

func TestWorker_Analyze(t *testing.T) {
	in := writeInput(t, "id;name\n1;ada\n2;grace\n")
	w, _ := startWorker(t)
	w.Commands() <- Analyze{Path: in}

	events := collect(t, w)
	done, ok := events[len(events)-1].(DoneEvent)
	if !ok {
		t.Fatalf("last event = %T", events[len(events)-1])
	}
	for _, ev := range events {
		if _, ok := ev.(AtomEvent); ok {
			t.Error("analyze streamed atoms")
		}
	}
	if done.Counts[atom.TypeHeader] != 1 || done.Counts[atom.TypeByteRow] != 2 {
		t.Errorf("counts = %v", done.Counts)
	}
}

func TestWorker_PublishRequiresDurableSink(t *testing.T) {
	in := writeInput(t, "a\n1\n")
	w, _ := startWorker(t)
	w.Commands() <- Publish{Path: in, Sink: sink.ConsoleSettings{}}

	events := collect(t, w)
	e, ok := events[0].(ErrorEvent)
	if !ok || !e.Final || !errors.IsCode(e.Err, errors.ErrCodeInvalidInput) {
		t.Errorf("events = %v, want INVALID_INPUT error", events)
	}
}

func TestWorker_PublishCsv(t *testing.T) {
	in := writeInput(t, "a;b\n1;2\n")
	out := filepath.Join(t.TempDir(), "out.csv")
	w, _ := startWorker(t)
	w.Commands() <- Publish{Path: in, Sink: sink.CsvSettings{Path: out}}

	events := collect(t, w)
	done := events[len(events)-1].(DoneEvent)
	if !done.Result.Completed || done.Result.Metrics.Sink.RecordCount != 1 {
		t.Errorf("result = %+v", done.Result)
	}
}

func TestWorker_MissingFile(t *testing.T) {
	w, _ := startWorker(t)
	w.Commands() <- Analyze{Path: filepath.Join(t.TempDir(), "gone.csv")}

	events := collect(t, w)
	e, ok := events[0].(ErrorEvent)
	if !ok || errors.IOKindOf(e.Err) != errors.IOKindNotFound {
		t.Errorf("events = %v, want IO not_found", events)
	}
}

func TestWorker_QuitClosesEvents(t *testing.T) {
	w, _ := startWorker(t)
	w.Commands() <- Quit{}
	select {
	case _, open := <-w.Events():
		if open {
			t.Error("received an event after Quit")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events not closed after Quit")
	}
}

func TestWorker_CancelClosesEvents(t *testing.T) {
	w, cancel := startWorker(t)
	cancel()
	select {
	case <-w.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("events not closed after cancel")
	}
}
