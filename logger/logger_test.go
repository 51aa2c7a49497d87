package logger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNew(t *testing.T) {
	cfg := &Config{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "my-service")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "my-service" {
		t.Errorf("expected service 'my-service', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("RIV_LOG_LEVEL", "debug")
	os.Setenv("RIV_LOG_FORMAT", "json")
	defer os.Unsetenv("RIV_LOG_LEVEL")
	defer os.Unsetenv("RIV_LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "riv", &buf)
	l.WithComponent("sink.csv").Info("sink opened", Fields(FieldPath, "/tmp/out.csv", FieldRecords, 3))

	out := buf.String()
	for _, want := range []string{`"component":"sink.csv"`, `"path":"/tmp/out.csv"`, `"records":3`, `"message":"sink opened"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "json"}, "riv", &buf)
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %s", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warn message")
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	l.WithComponent("x").Error("nothing")
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("relay.console")
	if cl == nil {
		t.Fatal("expected non-nil logger")
	}
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestWithContext_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "riv", &buf)
	ctx := ContextWithCorrelationID(context.Background(), "abc123")
	l.WithContext(ctx).Info("task")
	if !strings.Contains(buf.String(), `"correlation_id":"abc123"`) {
		t.Errorf("expected correlation id, got %s", buf.String())
	}
}

func TestWithContext_NoValue(t *testing.T) {
	l := NewDefault("test")
	if l.WithContext(context.Background()) != l {
		t.Error("expected same logger when context carries nothing")
	}
}

func TestWithFields(t *testing.T) {
	l := NewDefault("test")
	fl := l.WithFields(map[string]interface{}{"key": "value"})
	if fl == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "riv", &buf)
	l.WithError(errors.New("boom")).Error("failed")
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got %s", buf.String())
	}
}

func TestInit(t *testing.T) {
	cfg := Config{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	}
	Init(&cfg)
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	got := GetGlobalLogger()
	if got != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	Init(&Config{Level: "debug", Format: "console", Output: "stdout"})
	// These should not panic
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
	WithComponent("engine").Info("component msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stderr"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stdout"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stderr"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stderr"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{
		Level:   "info",
		Format:  "console",
		NoColor: true,
	}
	l := NewWithWriter(cfg, "riv", &buf)
	l.Info("hello")
	if !strings.Contains(buf.String(), "[RIV][INF]") {
		t.Errorf("expected service and level tags, got %q", buf.String())
	}
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields %v", f)
	}
	if len(f) != 2 {
		t.Errorf("expected 2 fields, got %d", len(f))
	}
}

func TestErrorFields(t *testing.T) {
	f := ErrorFields("sink", errors.New("boom"))
	if f[FieldStage] != "sink" || f[FieldError] != "boom" {
		t.Errorf("unexpected fields %v", f)
	}
}

func TestDurationFields(t *testing.T) {
	f := DurationFields("source", 1500*time.Millisecond)
	if f[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500, got %v", f[FieldDuration])
	}
}
