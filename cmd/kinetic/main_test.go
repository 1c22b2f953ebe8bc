package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPreviewOutputDefaultsToDiscard(t *testing.T) {
	out, err := previewOutput("")
	if err != nil {
		t.Fatalf("preview output: %v", err)
	}
	defer out.Close()

	nc, ok := out.(nopCloser)
	if !ok || nc.Writer != io.Discard {
		t.Fatalf("preview logs go to %T, want discard", out)
	}
}

func TestPreviewOutputWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.log")
	out, err := previewOutput(path)
	if err != nil {
		t.Fatalf("preview output: %v", err)
	}

	l, err := newLogger(out, "warn")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	l.Warn("spring forced to target", "cell", 1)
	l.Info("below level")
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "spring forced to target") {
		t.Errorf("warning missing from log file: %q", data)
	}
	if strings.Contains(string(data), "below level") {
		t.Errorf("info logged at warn level: %q", data)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := newLogger(io.Discard, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
