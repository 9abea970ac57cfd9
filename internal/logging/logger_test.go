package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json", "gobeacon", "1.2.3")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("hidden")
	logger.Info("advertising", "major", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "advertising" || rec["app"] != "gobeacon" || rec["version"] != "1.2.3" {
		t.Errorf("record = %v, want msg/app/version set", rec)
	}
	if rec["major"] != float64(7) {
		t.Errorf("major = %v, want 7", rec["major"])
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "text", "gobeacon", "dev")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("resolved")
	if !strings.Contains(buf.String(), "resolved") {
		t.Errorf("output %q missing message", buf.String())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", "text", "a", "v"); err == nil {
		t.Error("New() should reject unknown level")
	}
	if _, err := New(&bytes.Buffer{}, "info", "xml", "a", "v"); err == nil {
		t.Error("New() should reject unknown format")
	}
}
