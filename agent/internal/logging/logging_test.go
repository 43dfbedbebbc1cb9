package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lblanc/grafana-integration/agent/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud): expected error")
	}
}

func TestNew_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger, closer, err := New(config.LoggingConfig{Enabled: true, File: path}, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("poller: cycle done", "lines", 4)
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %s", len(lines), data)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "poller: cycle done" || rec["lines"].(float64) != 4 {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNew_FileUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "agent.log")
	if _, _, err := New(config.LoggingConfig{Enabled: true, File: path}, slog.LevelInfo); err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}

func TestNewHandler_Formats(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, "text", slog.LevelInfo, false)).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("plain text output: %q", buf.String())
	}

	buf.Reset()
	slog.New(newHandler(&buf, "text", slog.LevelInfo, true)).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("tint output: %q", buf.String())
	}

	buf.Reset()
	slog.New(newHandler(&buf, "json", slog.LevelInfo, true)).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json output: %q", buf.String())
	}
}
