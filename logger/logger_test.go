package logger

import (
	"bytes"
	"context"
	"encoding/json"
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
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "svc", &buf)

	l.WithComponent("di").Info("table sealed", Fields(FieldCount, 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "table sealed" {
		t.Errorf("expected message 'table sealed', got %v", entry["message"])
	}
	if entry[FieldComponent] != "di" {
		t.Errorf("expected component di, got %v", entry[FieldComponent])
	}
	if entry[FieldCount] != float64(3) {
		t.Errorf("expected count 3, got %v", entry[FieldCount])
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "json"}, "svc", &buf)

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded")
	l.WithComponent("x").Error("discarded")
}

func TestWithContext_BootID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "svc", &buf)

	ctx := ContextWithBootID(context.Background(), "boot-1")
	l.WithContext(ctx).Info("booting")

	if !strings.Contains(buf.String(), `"boot_id":"boot-1"`) {
		t.Errorf("expected boot_id in output, got %q", buf.String())
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "svc", &buf)

	l.WithFields(map[string]interface{}{FieldRegistry: "*boot.Provider1"}).
		WithError(errors.New("boom")).
		Error("registry failed")

	out := buf.String()
	if !strings.Contains(out, "*boot.Provider1") || !strings.Contains(out, "boom") {
		t.Errorf("expected registry and error fields, got %q", out)
	}
}

func TestInit(t *testing.T) {
	cfg := Config{
		ServiceName: "lambda",
		Level:       "info",
		Format:      "console",
		Output:      "stdout",
	}
	Init(&cfg)
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if gl.service != "lambda" {
		t.Errorf("expected service 'lambda', got %q", gl.service)
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected default global logger to be created")
	}
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
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
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

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("reg")
	Register("resolver", l)
	if Get("resolver") != l {
		t.Error("expected registered logger to be returned")
	}
}

func TestGetUnregistered(t *testing.T) {
	if Get("never-registered") == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(m), m)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields: %v", m)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("resolve", errors.New("missing"))
	if ef[FieldOperation] != "resolve" || ef[FieldError] != "missing" {
		t.Errorf("unexpected error fields: %v", ef)
	}

	df := DurationFields("boot", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}

	merged := MergeWithError(nil, errors.New("x"))
	if merged[FieldError] != "x" {
		t.Errorf("expected error field, got %v", merged)
	}
}
