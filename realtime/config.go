package realtime

import "time"

// Config holds the real-time optimizer's tuning knobs. The three preset
// constructors below mirror the spec's conservative/balanced/aggressive
// modes.
type Config struct {
	PredictionHorizon       time.Duration
	ConflictThreshold       float64
	DelayToleranceMinutes   float64
	EnableSpeedAdjustments  bool
	EnableRouteChanges      bool
	EnableStopSkipping      bool
	MaxAdjustmentsPerCycle  int
	UpdateFrequency         time.Duration
}

// Conservative: 15-min horizon, 0.8 threshold, speed-only adjustments.
func Conservative() Config {
	return Config{
		PredictionHorizon:      15 * time.Minute,
		ConflictThreshold:      0.8,
		DelayToleranceMinutes:  10,
		EnableSpeedAdjustments: true,
		EnableRouteChanges:     false,
		EnableStopSkipping:     false,
		MaxAdjustmentsPerCycle: 3,
		UpdateFrequency:        30 * time.Second,
	}
}

// Balanced: 30-min horizon, 0.7 threshold, speed + reroute.
func Balanced() Config {
	return Config{
		PredictionHorizon:      30 * time.Minute,
		ConflictThreshold:      0.7,
		DelayToleranceMinutes:  5,
		EnableSpeedAdjustments: true,
		EnableRouteChanges:     true,
		EnableStopSkipping:     false,
		MaxAdjustmentsPerCycle: 5,
		UpdateFrequency:        10 * time.Second,
	}
}

// Aggressive: 45-min horizon, 0.6 threshold, speed + reroute + stop-skip.
func Aggressive() Config {
	return Config{
		PredictionHorizon:      45 * time.Minute,
		ConflictThreshold:      0.6,
		DelayToleranceMinutes:  2,
		EnableSpeedAdjustments: true,
		EnableRouteChanges:     true,
		EnableStopSkipping:     true,
		MaxAdjustmentsPerCycle: 10,
		UpdateFrequency:        5 * time.Second,
	}
}

const predictionStep = 10 * time.Second
