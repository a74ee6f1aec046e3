package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRespectsLevelVar(t *testing.T) {
	var buf bytes.Buffer
	logger, lv := New(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record emitted at info level: %q", buf.String())
	}

	lv.Set(slog.LevelDebug)
	logger.Debug("shown", "package", "toolA")
	out := buf.String()
	if !strings.Contains(out, "shown") || !strings.Contains(out, "package=toolA") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "time=") {
		t.Errorf("timestamp should be stripped: %q", out)
	}
}
