package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.IncAction("add new taskboard")
	m.IncNotice("error")
	m.ObserveRequest("GET", "/taskboards", 200, 30*time.Millisecond)

	path := filepath.Join(t.TempDir(), "taskboard.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, want := range []string{
		`taskboard_actions_total{kind="add new taskboard"} 1`,
		`taskboard_notices_total{severity="error"} 1`,
		`taskboard_api_request_duration_seconds_count{method="GET",route="/taskboards",status="200"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in:\n%s", want, data)
		}
	}
}

func TestWriteTextfile_Disabled(t *testing.T) {
	var m *Metrics
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("expected a nil collector to skip the write, got %v", err)
	}
	if err := New().WriteTextfile(""); err != nil {
		t.Errorf("expected an empty path to skip the write, got %v", err)
	}
}
