package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("Level.String() = %v, expected %v", result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace":   TraceLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		" warn ":  WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", in, got, want)
		}
	}
}

func TestInitializeUsesConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(Config{Level: InfoLevel, Component: "regsearch", Output: &buf}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	t.Cleanup(func() { defaultLogger = nil })

	Info("cache cleared", String("dir", "/tmp/cache"))

	out := buf.String()
	for _, part := range []string{"[INFO]", "regsearch:", "cache cleared", "dir=/tmp/cache"} {
		if !strings.Contains(out, part) {
			t.Errorf("output missing %q: %s", part, out)
		}
	}
}

func TestLoggerPrettyFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{
		config: Config{Level: InfoLevel, Component: "test"},
		logger: log.New(&buf, "", 0),
	}

	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "test message",
		Component: "test",
		Fields:    map[string]interface{}{"url": "https://quay.io", "attempt": 1},
	}

	result := l.formatPretty(entry)

	expectedParts := []string{
		"2025-01-01 12:00:00",
		"[INFO]",
		"test:",
		"test message",
		"{attempt=1, url=https://quay.io}",
	}
	for _, part := range expectedParts {
		if !strings.Contains(result, part) {
			t.Errorf("formatPretty() result missing expected part: %s\nResult: %s", part, result)
		}
	}
}

func TestLoggerColorOnlyWhenEnabled(t *testing.T) {
	entry := LogEntry{Time: time.Now(), Level: "WARN", Message: "m"}

	plain := (&Logger{config: Config{}}).formatPretty(entry)
	if strings.Contains(plain, "\033[") {
		t.Errorf("expected no ANSI codes without UseColor: %q", plain)
	}
	colored := (&Logger{config: Config{UseColor: true}}).formatPretty(entry)
	if !strings.Contains(colored, "\033[33mWARN\033[0m") {
		t.Errorf("expected yellow WARN with UseColor: %q", colored)
	}
}

func TestLoggerJSONFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{
		config: Config{Level: InfoLevel, JSON: true, Component: "test"},
		logger: log.New(&buf, "", 0),
	}

	l.Log(WarnLevel, "Error fetching URL", String("url", "https://hub.docker.com"), Duration("timeout", 10*time.Second))

	var parsed LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed); err != nil {
		t.Fatalf("Log() produced invalid JSON: %v\nOutput: %s", err, buf.String())
	}
	if parsed.Message != "Error fetching URL" {
		t.Errorf("message = %q", parsed.Message)
	}
	if parsed.Level != "WARN" {
		t.Errorf("level = %q", parsed.Level)
	}
	if parsed.Fields["timeout"] != "10s" {
		t.Errorf("timeout field = %v, expected 10s", parsed.Fields["timeout"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{
		config: Config{Level: WarnLevel},
		logger: log.New(&buf, "", 0),
	}

	l.Log(InfoLevel, "info message")
	l.Log(DebugLevel, "debug message")
	l.Log(WarnLevel, "warn message")
	l.Log(ErrorLevel, "error message")

	output := buf.String()
	if strings.Contains(output, "info message") || strings.Contains(output, "debug message") {
		t.Errorf("messages below WARN should be filtered: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("WARN and ERROR messages should appear: %s", output)
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := String("key", "value"); f.Key != "key" || f.Value != "value" {
		t.Errorf("String() = %+v", f)
	}
	if f := Int("count", 42); f.Key != "count" || f.Value != 42 {
		t.Errorf("Int() = %+v", f)
	}
	if f := Bool("enabled", true); f.Key != "enabled" || f.Value != true {
		t.Errorf("Bool() = %+v", f)
	}
	if f := Duration("ttl", time.Hour); f.Value != "1h0m0s" {
		t.Errorf("Duration() = %+v", f)
	}
}

func TestErrField(t *testing.T) {
	if f := Err(errors.New("test error")); f.Key != "error" || f.Value != "test error" {
		t.Errorf("Err() = %+v", f)
	}
	if f := Err(nil); f.Value != nil {
		t.Errorf("Err(nil) = %+v, expected nil value", f)
	}
}

func TestConvenienceFunctionsWithoutInitialize(t *testing.T) {
	original := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = original }()

	// Must not panic
	Trace("t")
	Debug("d")
	Info("i")
	Warn("w")
	SetOutput(&bytes.Buffer{})
}

func TestSetOutput(t *testing.T) {
	if err := Initialize(Config{Level: TraceLevel}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { defaultLogger = nil })

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("debug with caller")
	if !strings.Contains(buf.String(), "logger_test.go") {
		t.Errorf("expected caller file for DEBUG output: %s", buf.String())
	}
}
