// Package realtime implements C7, the real-time optimizer: live train
// position tracking, horizon-bounded conflict prediction, and schedule
// adjustment recommendations, reusing the same railway graph the
// detector and resolver operate over.
package realtime

import "time"

// TrainPosition is a live position report for one train.
type TrainPosition struct {
	TrainID      string
	CurrentNode  string
	NextNode     string
	Progress     float64 // 0..1 toward NextNode
	SpeedKmh     float64
	Timestamp    time.Time
	Lat, Lon     float64
	HasCoords    bool
}

// TrainDelay reports a train's current delay.
type TrainDelay struct {
	TrainID      string
	DelayMinutes float64 // positive = late, negative = early
	Reason       string
	DetectedAt   time.Time
	IsRecovering bool
}

// AdjustmentType is the closed set of adjustment kinds.
type AdjustmentType string

const (
	SpeedChange   AdjustmentType = "speed_change"
	HoldAtStation AdjustmentType = "hold_at_station"
	RouteChange   AdjustmentType = "route_change"
)

// PredictedConflict is a forward-looking conflict estimate between two
// tracked trains.
type PredictedConflict struct {
	Train1ID      string
	Train2ID      string
	ConflictNode  string
	PredictedTime time.Time
	Confidence    float64
	Train1Pos     TrainPosition
	Train2Pos     TrainPosition
}

// Adjustment is a recommended schedule change to avoid a predicted
// conflict.
type Adjustment struct {
	TrainID                 string
	Type                    AdjustmentType
	NewSpeedKmh             float64
	HoldMinutes             float64
	EstimatedDelayReduction float64 // minutes
	Confidence              float64
	Justification           string
}

// Stats tracks running counters across the optimizer's lifetime.
type Stats struct {
	TotalUpdates         int
	ConflictsPredicted   int
	AdjustmentsApplied   int
	AvgDelayReduction    float64
	LastUpdate           time.Time
}
