package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/kart/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Nil manager is a no-op
	if err := om.WriteTelemetry([]WindowStats{{Kart: "a"}}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil = %q", om.Dir())
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	snap := snapWith(true, false, 0.1, 0.1, 0)
	for tick := int32(0); tick < 3; tick++ {
		if err := om.WriteWheels(NewWheelSamples(tick, float64(tick)*0.02, "a", snap)); err != nil {
			t.Fatalf("WriteWheels: %v", err)
		}
	}
	if err := om.WriteTelemetry([]WindowStats{{Kart: "a", WindowEndTick: 50}, {Kart: "b", WindowEndTick: 50}}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	if err := om.WriteTelemetry([]WindowStats{{Kart: "a", WindowEndTick: 100}}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	if err := om.WritePerf(NewPerfCollector(5).Stats(0.02), 50); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSettled, Kart: "a", Tick: 50}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tests := []struct {
		file      string
		wantLines int
		header    string
	}{
		{"wheels.csv", 1 + 3*4, "tick,sim_time,kart,wheel,contact"},
		{"telemetry.csv", 1 + 3, "kart,window_end,sim_time"},
		{"perf.csv", 1 + 1, "window_end,avg_tick_us"},
		{"bookmarks.csv", 1 + 1, "type,kart,tick,description"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) != tt.wantLines {
				t.Errorf("%d lines, want %d", len(lines), tt.wantLines)
			}
			if !strings.HasPrefix(lines[0], tt.header) {
				t.Errorf("header = %q, want prefix %q", lines[0], tt.header)
			}
		})
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestNewWheelSamples(t *testing.T) {
	snap := snapWith(true, true, 0.1, 0.2, 5)
	snap.Throttle = 0.5
	rows := NewWheelSamples(3, 0.06, "a", snap)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0].Wheel != "front_left" || rows[3].Wheel != "rear_right" {
		t.Errorf("wheel names = %q .. %q", rows[0].Wheel, rows[3].Wheel)
	}
	if rows[2].Compression != 0.2 || !rows[2].Clamped || rows[2].Throttle != 0.5 || rows[2].Torque != 100 {
		t.Errorf("row = %+v", rows[2])
	}
}
