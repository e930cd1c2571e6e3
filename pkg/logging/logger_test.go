package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trailgo/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	// Pre-existing log gets rotated
	if err := os.WriteFile(serverLog, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.LogConfig{
		Server: config.LogSettings{
			Path:  serverLog,
			Level: "DEBUG",
		},
		Requests: config.LogSettings{
			Path:  requestLog,
			Level: "INFO",
		},
	}

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer cleanup()

	if _, err := os.Stat(serverLog); os.IsNotExist(err) {
		t.Error("Server log file not created")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}
	old, err := os.ReadFile(serverLog + ".old")
	if err != nil || string(old) != "previous run\n" {
		t.Errorf("expected rotated .old file, got %q (%v)", old, err)
	}

	if RequestLogger == nil {
		t.Fatal("RequestLogger was not initialized")
	}

	slog.Info("captured line", "k", "v")
	if got := GlobalLogCapture.GetLastLine(); !strings.Contains(got, "captured line") {
		t.Errorf("expected capture of last line, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"TRACE", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogCaptureWriter(t *testing.T) {
	w := NewLogCaptureWriter(3)
	if w.GetLastLine() != "" {
		t.Error("expected empty last line")
	}
	for _, l := range []string{"a\n", "b\n", "c\n", "d\n"} {
		if _, err := w.Write([]byte(l)); err != nil {
			t.Fatal(err)
		}
	}

	if got := w.GetLastLine(); got != "d" {
		t.Errorf("last line = %q, want d", got)
	}
	if got := strings.Join(w.Lines(0), ","); got != "b,c,d" {
		t.Errorf("Lines(0) = %s, want b,c,d", got)
	}
	if got := strings.Join(w.Lines(2), ","); got != "c,d" {
		t.Errorf("Lines(2) = %s, want c,d", got)
	}
	if got := strings.Join(w.Lines(10), ","); got != "b,c,d" {
		t.Errorf("Lines(10) = %s, want b,c,d", got)
	}
}
