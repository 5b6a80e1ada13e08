// Package schedule models trains and ordered stop sequences: arrival and
// departure times, platform assignment, and the validation predicates
// spec §4.3 requires (chronological, topological, platform).
package schedule

import "time"

// TrainKind enumerates the rolling-stock class, used by the resolver's
// priority computation.
type TrainKind string

const (
	Regional  TrainKind = "regional"
	Intercity TrainKind = "intercity"
	HighSpeed TrainKind = "high_speed"
	Freight   TrainKind = "freight"
)

// Train carries the physical/performance attributes needed for
// trapezoidal travel-time estimation.
type Train struct {
	ID           string
	Name         string
	Kind         TrainKind
	MaxSpeedKmh  float64
	AccelMs2     float64
	DecelMs2     float64
}

// Stop is one entry in a TrainSchedule.
type Stop struct {
	NodeID    string
	Arrival   time.Time
	Departure time.Time
	IsStop    bool // false means pass-through
	Platform  int  // 0 means unspecified
}

// DwellTime returns Departure - Arrival.
func (s Stop) DwellTime() time.Duration {
	return s.Departure.Sub(s.Arrival)
}

// HasPlatform reports whether a platform was specified for this stop.
func (s Stop) HasPlatform() bool { return s.Platform > 0 }

// TrainSchedule is an ordered stop sequence for one train.
type TrainSchedule struct {
	ID      string
	TrainID string
	Stops   []Stop
}
