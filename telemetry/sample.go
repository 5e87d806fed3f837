package telemetry

import "github.com/pthm-cable/kart/vehicle"

// KartSample is the per-tick state of one kart fed to the Collector.
type KartSample struct {
	Speed   float64 // chassis linear speed, m/s
	Height  float64 // chassis origin height, m
	Tilt    float64 // angle between chassis up and world up, radians
	Vehicle vehicle.Snapshot
}

// WheelSample is one row of wheels.csv.
type WheelSample struct {
	Tick        int32   `csv:"tick"`
	SimTimeSec  float64 `csv:"sim_time"`
	Kart        string  `csv:"kart"`
	Wheel       string  `csv:"wheel"`
	Contact     bool    `csv:"contact"`
	Length      float64 `csv:"length"`
	Compression float64 `csv:"compression"`
	Spring      float64 `csv:"spring"`
	Damper      float64 `csv:"damper"`
	AntiRoll    float64 `csv:"anti_roll"`
	NormalLoad  float64 `csv:"normal_load"`
	VLong       float64 `csv:"v_long"`
	VLat        float64 `csv:"v_lat"`
	Fx          float64 `csv:"fx"`
	Fy          float64 `csv:"fy"`
	Clamped     bool    `csv:"clamped"`
	Throttle    float64 `csv:"throttle"`
	Torque      float64 `csv:"engine_torque"`
}

// NewWheelSamples flattens a vehicle snapshot into one row per wheel.
func NewWheelSamples(tick int32, simTime float64, kart string, snap vehicle.Snapshot) []WheelSample {
	rows := make([]WheelSample, 0, len(snap.Wheels))
	for _, w := range snap.Wheels {
		rows = append(rows, WheelSample{
			Tick:        tick,
			SimTimeSec:  simTime,
			Kart:        kart,
			Wheel:       w.Corner.String(),
			Contact:     w.Contact,
			Length:      w.Length,
			Compression: w.Compression,
			Spring:      w.SpringForce,
			Damper:      w.DamperForce,
			AntiRoll:    w.AntiRoll,
			NormalLoad:  w.NormalLoad,
			VLong:       w.VLong,
			VLat:        w.VLat,
			Fx:          w.Fx,
			Fy:          w.Fy,
			Clamped:     w.Clamped,
			Throttle:    snap.Throttle,
			Torque:      snap.EngineTorque,
		})
	}
	return rows
}
