package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
)

type fakeWriter struct {
	failures []error
	calls    int
	messages []kafkago.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.calls++
	if len(w.failures) > 0 {
		err := w.failures[0]
		w.failures = w.failures[1:]
		return err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(t *testing.T, w *fakeWriter) *Producer {
	t.Helper()
	p, err := NewProducer(Config{Topic: "rows"}, logger.NewNop(), WithWriter(w))
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	return p
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("brokers = %v", cfg.Brokers)
	}
	if cfg.Compression != "snappy" || cfg.Retries != 3 || cfg.BatchSize != 100 || cfg.RequiredAcks != -1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.SASLMechanism != "" {
		t.Error("SASL mechanism should stay empty when SASL is off")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing topic", func(c *Config) { c.Topic = "" }, true},
		{"bad duration", func(c *Config) { c.WriteTimeout = "soon" }, true},
		{"sasl without user", func(c *Config) { c.EnableSASL = true; c.SASLMechanism = "PLAIN" }, true},
		{"bad sasl mechanism", func(c *Config) { c.EnableSASL = true; c.SASLMechanism = "MD5"; c.Username = "u" }, true},
		{"sasl scram", func(c *Config) { c.EnableSASL = true; c.SASLMechanism = "SCRAM-SHA-512"; c.Username = "u" }, false},
		{"no brokers", func(c *Config) { c.Brokers = nil }, true},
		{"unknown compression", func(c *Config) { c.Compression = "brotli" }, true},
		{"bad acks", func(c *Config) { c.RequiredAcks = 2 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Topic: "rows"}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestResolveCompression(t *testing.T) {
	tests := map[string]kafkago.Compression{
		"gzip":    kafkago.Gzip,
		"lz4":     kafkago.Lz4,
		"zstd":    kafkago.Zstd,
		"snappy":  kafkago.Snappy,
		"none":    0,
		"unknown": kafkago.Snappy,
	}
	for name, want := range tests {
		if got := ResolveCompression(name); got != want {
			t.Errorf("ResolveCompression(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewTransport_SASL(t *testing.T) {
	cfg := Config{Topic: "rows", EnableSASL: true, SASLMechanism: "PLAIN", Username: "u", Password: "p"}
	cfg.ApplyDefaults()
	tr, err := NewTransport(&cfg)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	if tr.SASL == nil {
		t.Error("expected SASL mechanism")
	}
	if tr.IdleTimeout.String() != "30s" {
		t.Errorf("idle timeout = %v", tr.IdleTimeout)
	}
}

func TestNewTransport_MissingCA(t *testing.T) {
	cfg := Config{Topic: "rows", EnableTLS: true, TLSCAFile: "/nonexistent/ca.pem"}
	cfg.ApplyDefaults()
	_, err := NewTransport(&cfg)
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestFromKafka(t *testing.T) {
	tests := []struct {
		err  error
		code errors.ErrorCode
		kind errors.IOKind
	}{
		{fmt.Errorf("dial tcp 127.0.0.1:9092: connection refused"), errors.ErrCodeIO, errors.IOKindOther},
		{fmt.Errorf("read: i/o timeout"), errors.ErrCodeIO, errors.IOKindTimedOut},
		{fmt.Errorf("[10] Message Size Too Large: message too large"), errors.ErrCodeInvalidInput, ""},
		{fmt.Errorf("something odd"), errors.ErrCodeGeneral, ""},
	}
	for _, tc := range tests {
		got := FromKafka(tc.err, "rows")
		if got.Code != tc.code {
			t.Errorf("FromKafka(%v) code = %s, want %s", tc.err, got.Code, tc.code)
		}
		if tc.kind != "" && got.IOKind != tc.kind {
			t.Errorf("FromKafka(%v) kind = %s, want %s", tc.err, got.IOKind, tc.kind)
		}
		if got.Details["topic"] != "rows" {
			t.Errorf("missing topic detail: %v", got.Details)
		}
	}
	if FromKafka(nil, "rows") != nil {
		t.Error("nil error should map to nil")
	}
}

func TestNewProducer_InvalidConfig(t *testing.T) {
	_, err := NewProducer(Config{}, logger.NewNop(), WithWriter(&fakeWriter{}))
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
}

func TestProducer_SendJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(t, w)
	if err := p.SendJSON(context.Background(), "k1", map[string]string{"id": "1"}); err != nil {
		t.Fatalf("SendJSON: %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("got %d messages", len(w.messages))
	}
	var body map[string]string
	if err := json.Unmarshal(w.messages[0].Value, &body); err != nil || body["id"] != "1" {
		t.Errorf("body = %s", w.messages[0].Value)
	}
	if string(w.messages[0].Key) != "k1" {
		t.Errorf("key = %s", w.messages[0].Key)
	}
	if p.Topic() != "rows" {
		t.Errorf("topic = %s", p.Topic())
	}
}

func TestProducer_RetriesTransientErrors(t *testing.T) {
	w := &fakeWriter{failures: []error{fmt.Errorf("connection reset by peer")}}
	p := newTestProducer(t, w)
	if err := p.WriteMessages(context.Background(), kafkago.Message{Value: []byte("x")}); err != nil {
		t.Fatalf("WriteMessages: %v", err)
	}
	if w.calls != 2 {
		t.Errorf("calls = %d, want 2", w.calls)
	}
}

func TestProducer_GivesUpAfterRetries(t *testing.T) {
	reset := fmt.Errorf("connection reset by peer")
	w := &fakeWriter{failures: []error{reset, reset, reset, reset}}
	p := newTestProducer(t, w)
	err := p.WriteMessages(context.Background(), kafkago.Message{Value: []byte("x")})
	if _, ok := errors.AsAppError(err); !ok {
		t.Errorf("got %v, want AppError", err)
	}
	if w.calls != 3 {
		t.Errorf("calls = %d, want 3", w.calls)
	}
}

func TestProducer_CancelledWhileRetrying(t *testing.T) {
	w := &fakeWriter{failures: []error{fmt.Errorf("connection reset by peer"), nil}}
	p := newTestProducer(t, w)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.WriteMessages(ctx, kafkago.Message{Value: []byte("x")})
	if errors.IOKindOf(err) != errors.IOKindInterrupted {
		t.Errorf("got %v, want interrupted IO error", err)
	}
	if w.calls != 0 {
		t.Errorf("calls = %d, want 0", w.calls)
	}
}

func TestProducer_NonRetryableStopsEarly(t *testing.T) {
	w := &fakeWriter{failures: []error{fmt.Errorf("unknown topic or partition"), nil}}
	p := newTestProducer(t, w)
	err := p.WriteMessages(context.Background(), kafkago.Message{Value: []byte("x")})
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
	if w.calls != 1 {
		t.Errorf("calls = %d, want 1", w.calls)
	}
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(t, w)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !w.closed {
		t.Error("writer was not closed")
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := p.WriteMessages(context.Background()); !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("write after close = %v", err)
	}
	if p.Stats() != (WriterMetrics{}) {
		t.Error("custom writer should report zero stats")
	}
}
