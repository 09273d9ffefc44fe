package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Info("run started", "tasks", 3)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	if entry["msg"] != "run started" {
		t.Errorf("msg = %v, want 'run started'", entry["msg"])
	}
	if entry["tasks"] != float64(3) {
		t.Errorf("tasks = %v, want 3", entry["tasks"])
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLogger(dir, LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Close()

	data, _ := os.ReadFile(filepath.Join(dir, "run.log"))
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "kept") {
		t.Errorf("log contents = %q, want a single WARN line", data)
	}
}

func TestWithAttributesPropagate(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.WithPlan("p1").WithComponent("runner").Info("tick")
	l.Close()

	data, _ := os.ReadFile(filepath.Join(dir, "run.log"))
	for _, want := range []string{`"plan_id":"p1"`, `"component":"runner"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %s: %s", want, data)
		}
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"WARN", LevelWarn},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		got := parseLevel(tt.in)
		want := parseLevel(tt.want)
		if got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, want)
		}
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NopLogger()
	l.Debug("a")
	l.Info("b", "k", "v")
	l.Warn("c")
	l.Error("d")
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
