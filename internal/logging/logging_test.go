package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !test.hasError && level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		parsed, err := ParseLevel(LevelString(level))
		if err != nil {
			t.Fatalf("LevelString(%v) does not parse: %v", level, err)
		}
		if parsed != level {
			t.Errorf("round trip of %v gave %v", level, parsed)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		hasError bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"xml", FormatText, true},
	}

	for _, test := range tests {
		format, err := ParseFormat(test.input)
		if (err != nil) != test.hasError {
			t.Errorf("ParseFormat(%q) error = %v, want error %v", test.input, err, test.hasError)
		}
		if format != test.expected {
			t.Errorf("ParseFormat(%q) = %v, want %v", test.input, format, test.expected)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level Info, got %v", cfg.Level)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected default output stderr, got %s", cfg.Output)
	}
	if cfg.Component != "textreplacer" {
		t.Errorf("expected component textreplacer, got %s", cfg.Component)
	}
	if !strings.Contains(cfg.FilePath, "textreplacer") {
		t.Errorf("default log path %q is not under textreplacer", cfg.FilePath)
	}
}

func TestShouldRedact(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"replacement", true},
		{"Replacement", true},
		{"text", true},
		{"typed_text", true},
		{"buffer", true},
		{"password", true},
		{"trigger", false},
		{"rules", false},
		{"error", false},
		{"component", false},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			if got := shouldRedact(test.key); got != test.expected {
				t.Errorf("shouldRedact(%q) = %v, expected %v", test.key, got, test.expected)
			}
		})
	}
}

func TestJSONOutputRedacts(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{
		Level:     LevelDebug,
		Format:    FormatJSON,
		Component: "test",
		Writer:    &buf,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("replaced", "trigger", "addr", "replacement", "221B Baker Street")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["trigger"] != "addr" {
		t.Errorf("trigger = %v, want addr", entry["trigger"])
	}
	if entry["replacement"] != "[REDACTED]" {
		t.Errorf("replacement = %v, want [REDACTED]", entry["replacement"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v, want test", entry["component"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelWarn, Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message missing")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Format: FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.WithComponent("engine").Info("running")

	if !strings.Contains(buf.String(), `"component":"engine"`) {
		t.Errorf("component attribute missing: %s", buf.String())
	}
}

func TestFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "textreplacer.log")

	logger, err := New(&Config{Output: "file", FilePath: logPath, MaxSize: 1})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.Info("engine running", "rules", 3)
	if err := logger.Sync(); err != nil {
		t.Errorf("sync failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "engine running") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestFileRotatorRotatesOnSize(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{
		FilePath:   logPath,
		MaxSize:    1, // 1 MB
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}

	line := []byte(strings.Repeat("x", 64*1024) + "\n")
	for i := 0; i < 40; i++ {
		if _, err := rotator.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := rotator.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files := rotator.LogFiles()
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
	if files[0] != logPath {
		t.Errorf("first file = %s, want %s", files[0], logPath)
	}
	if len(files)-1 > 2 {
		t.Errorf("kept %d backups, want at most 2", len(files)-1)
	}
}

func TestFileRotatorRotatesOnDayChange(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{FilePath: logPath, MaxSize: 10})
	if err != nil {
		t.Fatalf("failed to create rotator: %v", err)
	}

	rotator.Write([]byte("day one\n"))
	rotator.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	rotator.Write([]byte("day two\n"))
	rotator.Close()

	if got := len(rotator.LogFiles()); got != 2 {
		t.Errorf("expected current plus one rotated file, got %d", got)
	}
	data, _ := os.ReadFile(logPath)
	if string(data) != "day two\n" {
		t.Errorf("current file = %q", data)
	}
}

func TestCrashHandlerRecover(t *testing.T) {
	var seen []CrashReport
	handler := NewCrashHandler(&CrashHandlerConfig{
		CrashDir:  t.TempDir(),
		Stderr:    io.Discard,
		Version:   "1.0.0",
		Component: "test",
		OnCrash:   func(r CrashReport) { seen = append(seen, r) },
	})

	err := handler.Recover(map[string]string{"op": "run"}, func() error {
		panic("intentional test panic")
	})
	if err == nil || !strings.Contains(err.Error(), "intentional test panic") {
		t.Fatalf("expected panic error, got %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("OnCrash called %d times", len(seen))
	}

	reports, err := handler.CrashReports()
	if err != nil {
		t.Fatalf("failed to list crash reports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	report := reports[0]
	if report.Version != "1.0.0" || report.Component != "test" {
		t.Errorf("unexpected report metadata: %+v", report)
	}
	if report.Context["op"] != "run" {
		t.Errorf("context not recorded: %v", report.Context)
	}
	if report.StackTrace == "" {
		t.Error("stack trace missing")
	}
}

func TestCrashHandlerPassesThroughErrors(t *testing.T) {
	handler := NewCrashHandler(&CrashHandlerConfig{CrashDir: t.TempDir()})
	want := errors.New("plain failure")

	if err := handler.Recover(nil, func() error { return want }); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
	reports, _ := handler.CrashReports()
	if len(reports) != 0 {
		t.Errorf("unexpected crash reports: %d", len(reports))
	}
}

func TestCleanupOldCrashReports(t *testing.T) {
	dir := t.TempDir()
	handler := NewCrashHandler(&CrashHandlerConfig{CrashDir: dir, Component: "test", Stderr: io.Discard})
	handler.HandlePanic("old", nil)

	files, _ := filepath.Glob(filepath.Join(dir, "crash-*.json"))
	if len(files) != 1 {
		t.Fatalf("expected 1 crash file, got %d", len(files))
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(files[0], past, past); err != nil {
		t.Fatal(err)
	}

	if err := handler.CleanupOldCrashReports(24 * time.Hour); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	reports, _ := handler.CrashReports()
	if len(reports) != 0 {
		t.Errorf("expected old report removed, %d left", len(reports))
	}
}
