package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, flush, err := NewWithWriter("info", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	defer flush()

	logger.V(1).Info("hidden debug")
	logger.Info("stack computed", "traces", 3)
	logger.Error(errors.New("boom"), "velocity check failed")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Fatalf("V(1) message logged at info level:\n%s", out)
	}
	if !strings.Contains(out, "stack computed") || !strings.Contains(out, "traces") {
		t.Fatalf("info message missing:\n%s", out)
	}
	if !strings.Contains(out, "velocity check failed") || !strings.Contains(out, "boom") {
		t.Fatalf("error message missing:\n%s", out)
	}
}

func TestNewWithWriterDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, flush, err := NewWithWriter("debug", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	defer flush()
	logger.V(1).Info("grid built")
	if !strings.Contains(buf.String(), "grid built") {
		t.Fatalf("debug message missing:\n%s", buf.String())
	}
}

type syncRecorder struct {
	bytes.Buffer
	synced int
}

func (s *syncRecorder) Sync() error {
	s.synced++
	return nil
}

func TestFlushSyncsWriter(t *testing.T) {
	var w syncRecorder
	logger, flush, err := NewWithWriter("info", &w)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	logger.Info("archived run", "id", 1)
	flush()

	if w.synced == 0 {
		t.Fatal("flush did not sync the writer")
	}
	if !strings.Contains(w.String(), "archived run") {
		t.Fatalf("entry missing:\n%s", w.String())
	}
}

func TestNewWithWriterRejectsUnknownLevel(t *testing.T) {
	_, flush, err := NewWithWriter("loud", &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error")
	}
	flush()
}
