package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesLeveledLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("signed in as %s", "demo")
	logger.Warn("token near expiry")
	logger.Error("fetch failed: %v", os.ErrDeadlineExceeded)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	for _, want := range []string{"[INFO] signed in as demo", "[WARN] token near expiry", "[ERROR] fetch failed"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q:\n%s", want, content)
		}
	}
}

func TestLoggerAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	for _, msg := range []string{"first run", "second run"} {
		logger, err := NewLogger(path)
		if err != nil {
			t.Fatalf("NewLogger: %v", err)
		}
		logger.Info(msg)
		logger.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Fatalf("expected both runs in the file:\n%s", data)
	}
}

func TestGetLogPathIsPerDay(t *testing.T) {
	path := GetLogPath()
	if filepath.Ext(path) != ".log" {
		t.Fatalf("expected a .log file, got %s", path)
	}
	if !strings.Contains(path, "logdeck") && !strings.HasPrefix(path, "logs"+string(filepath.Separator)) {
		t.Fatalf("unexpected log location %s", path)
	}
}
