package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ygrebnov/lifecycle"
	"github.com/ygrebnov/lifecycle/internal/config"
)

func TestNew_JSONLevelFiltering(t *testing.T) {
	var stderr bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{Level: "info", Format: "json", Output: "stderr"}, nil, &stderr)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()

	logger.Debug().Msg("hidden")
	logger.Info().Int("worker_id", 3).Msg("shown")

	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one log line, got %q", stderr.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "shown" || entry["level"] != "info" || entry["service"] != "lifecycle" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["worker_id"] != float64(3) {
		t.Errorf("worker_id = %v; want 3", entry["worker_id"])
	}
}

func TestNew_ConsoleToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, _, err := New(config.LoggingConfig{Level: "debug", Format: "console", Output: "stdout"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug().Msg("spawned")
	if !strings.Contains(stdout.String(), "spawned") {
		t.Errorf("expected console output on stdout, got %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("expected nothing on stderr, got %q", stderr.String())
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifecycle.log")
	logger, closer, err := New(config.LoggingConfig{Level: "warn", Format: "json", Output: path}, nil, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn().Msg("on disk")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "on disk") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	tests := []config.LoggingConfig{
		{Level: "loud", Format: "json"},
		{Level: "info", Format: "xml"},
		{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")},
	}
	for _, cfg := range tests {
		if _, _, err := New(cfg, nil, nil); !errors.Is(err, lifecycle.ErrInvalidConfig) {
			t.Errorf("New(%+v): expected ErrInvalidConfig, got %v", cfg, err)
		}
	}
}
