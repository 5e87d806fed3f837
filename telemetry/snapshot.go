package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the state of every kart at one tick.
type Snapshot struct {
	Version int     `json:"version"`
	Tick    int32   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Karts []KartState `json:"karts"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// KartState holds one kart's chassis pose, motion and suspension state.
type KartState struct {
	Name string `json:"name"`

	Position        [3]float64 `json:"position"`
	Orientation     [4]float64 `json:"orientation"` // w, x, y, z
	LinearVelocity  [3]float64 `json:"linear_velocity"`
	AngularVelocity [3]float64 `json:"angular_velocity"`

	Throttle     float64    `json:"throttle"`
	Compressions [4]float64 `json:"compressions"` // front_left, front_right, rear_left, rear_right

	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	SpawnTick   int32   `json:"spawn_tick"`
	Distance    float64 `json:"distance"`
	MaxSpeed    float64 `json:"max_speed"`
	AirborneSec float64 `json:"airborne_sec"`
	Touchdowns  int     `json:"touchdowns"`
	Liftoffs    int     `json:"liftoffs"`
	ClampTicks  int     `json:"clamp_ticks"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		SpawnTick:   ls.SpawnTick,
		Distance:    ls.Distance,
		MaxSpeed:    ls.MaxSpeed,
		AirborneSec: ls.AirborneSec,
		Touchdowns:  ls.Touchdowns,
		Liftoffs:    ls.Liftoffs,
		ClampTicks:  ls.ClampTicks,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type and kart for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type)+"_"+snapshot.Bookmark.Kart, " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
