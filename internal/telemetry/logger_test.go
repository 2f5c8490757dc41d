package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.With("component", "test").Info("level generated", "level", 3)
	logger.Debug("hidden")

	out := buf.String()
	for _, want := range []string{"level generated", "component=test", "level=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
}

func TestTracerNames(t *testing.T) {
	if Tracer("game") == nil {
		t.Error("Tracer() returned nil")
	}
	if NoopTracer() == nil {
		t.Error("NoopTracer() returned nil")
	}
}
