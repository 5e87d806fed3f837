package sim

import (
	"log/slog"

	"github.com/pthm-cable/kart/telemetry"
	"github.com/pthm-cable/kart/vehicle"
)

// recordTelemetry feeds the post-integration state of every kart to the collectors.
func (s *Sim) recordTelemetry() {
	interval := s.cfg.Telemetry.SampleInterval
	sampleWheels := s.outputManager != nil && interval > 0 && int(s.tick)%interval == 0
	simTime := s.SimTime()

	s.wheelRows = s.wheelRows[:0]
	query := s.kartFilter.Query()
	for query.Next() {
		kart, chassis, _ := query.Get()
		body := chassis.Body
		snap := kart.Vehicle.Snapshot()

		s.collector.Record(kart.Name, telemetry.KartSample{
			Speed:   body.Speed(),
			Height:  body.Height(),
			Tilt:    body.Tilt(),
			Vehicle: snap,
		})
		s.lifetimeTracker.Update(kart.Name, body.Position, body.Speed(), snap)

		if prev, ok := s.prevSnaps[kart.Name]; ok {
			for _, e := range telemetry.DetectWheelEvents(s.tick, kart.Name, prev, snap) {
				s.collector.RecordEvent(e)
				s.lifetimeTracker.RecordEvent(e)
			}
		}
		s.prevSnaps[kart.Name] = snap

		if sampleWheels {
			s.wheelRows = append(s.wheelRows, telemetry.NewWheelSamples(s.tick, simTime, kart.Name, snap)...)
		}
	}

	if len(s.wheelRows) > 0 {
		if err := s.outputManager.WriteWheels(s.wheelRows); err != nil {
			slog.Error("failed to write wheels", "error", err)
		}
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Sim) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick)
	perfStats := s.perfCollector.Stats(s.cfg.Physics.DT)

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		for _, ws := range stats {
			ws.LogStats()
		}
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, s.tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, ws := range stats {
		detector := s.bookmarks[ws.Kart]
		if detector == nil {
			continue
		}
		for _, bm := range detector.Check(ws) {
			if s.logStats {
				bm.LogBookmark()
			}
			if s.outputManager != nil {
				if err := s.outputManager.WriteBookmark(bm); err != nil {
					slog.Error("failed to write bookmark", "error", err)
				}
			}
			if s.snapshotDir != "" {
				s.saveSnapshot(&bm)
			}
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (s *Sim) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := s.CreateSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}

// CreateSnapshot builds a snapshot of every kart at the current tick.
func (s *Sim) CreateSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Tick:     s.tick,
		SimTime:  s.SimTime(),
		Bookmark: bookmark,
	}

	for _, kv := range s.Karts() {
		body := kv.Body
		q := body.Orientation
		state := telemetry.KartState{
			Name:            kv.Name,
			Position:        [3]float64(body.Position),
			Orientation:     [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
			LinearVelocity:  [3]float64(body.LinearVelocity),
			AngularVelocity: [3]float64(body.AngularVelocity),
			Throttle:        kv.Throttle,
			Lifetime:        s.lifetimeTracker.Get(kv.Name).ToJSON(),
		}
		for c := range vehicle.NumCorners {
			state.Compressions[c] = kv.Vehicle.State(vehicle.Corner(c)).LastCompression
		}
		snapshot.Karts = append(snapshot.Karts, state)
	}

	return snapshot
}
