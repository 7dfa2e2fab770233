package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ogurasousui/daily-report/internal/platform/config"
)

func TestBuild_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, flush := NewWithWriter(config.LogConfig{Level: "info", JSON: true}, &buf)

	l.Info("report created")
	l.Debug("suppressed")
	flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if entry["msg"] != "report created" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestBuild_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, flush := NewWithWriter(config.LogConfig{Level: "loud"}, &buf)
	l.Debug("hidden")
	l.Info("visible")
	flush()

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestBuild_WritesRotatedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")

	var buf bytes.Buffer
	l, flush := NewWithWriter(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &buf)
	l.Info("to file")
	flush()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"to file"`) {
		t.Fatalf("expected json entry in file, got %q", string(b))
	}
}
