// Package telemetry provides per-wheel sampling, window statistics,
// bookmarking, snapshots and CSV output for kart runs.
package telemetry

import "github.com/pthm-cable/kart/vehicle"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventTouchdown EventType = iota // wheel regained ground contact
	EventLiftoff                    // wheel lost ground contact
	EventClampOnset                 // tire force started hitting the friction limit
)

func (t EventType) String() string {
	switch t {
	case EventTouchdown:
		return "touchdown"
	case EventLiftoff:
		return "liftoff"
	case EventClampOnset:
		return "clamp_onset"
	}
	return "unknown"
}

// Event represents a single per-wheel transition.
type Event struct {
	Type   EventType
	Tick   int32
	Kart   string
	Corner vehicle.Corner
}

// DetectWheelEvents compares two consecutive vehicle snapshots and returns
// the wheel transitions between them.
func DetectWheelEvents(tick int32, kart string, prev, cur vehicle.Snapshot) []Event {
	var events []Event
	for i := range cur.Wheels {
		p, c := prev.Wheels[i], cur.Wheels[i]
		corner := vehicle.Corner(i)
		switch {
		case c.Contact && !p.Contact:
			events = append(events, Event{Type: EventTouchdown, Tick: tick, Kart: kart, Corner: corner})
		case !c.Contact && p.Contact:
			events = append(events, Event{Type: EventLiftoff, Tick: tick, Kart: kart, Corner: corner})
		}
		if c.Clamped && !p.Clamped {
			events = append(events, Event{Type: EventClampOnset, Tick: tick, Kart: kart, Corner: corner})
		}
	}
	return events
}
