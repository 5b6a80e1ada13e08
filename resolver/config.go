package resolver

import "github.com/railwayai/railwayai/schedule"

// Config holds every resolver knob explicit, per the decision table's
// defaults.
type Config struct {
	DelayWeight            float64
	PlatformChangeWeight   float64
	RerouteWeight          float64
	PassengerImpactWeight  float64

	MaxDelaySeconds        float64
	MinHeadwaySeconds      float64
	StationDwellBuffer     float64

	AllowSingleTrackMeets    bool
	PreferDoubleTrackRouting bool
	SingleTrackMeetBuffer    float64

	AllowPlatformReassignment bool
	OptimizePlatformUsage     bool
	PlatformBuffer            float64
	PlatformChangeCost        float64
}

// DefaultConfig returns the decision table's defaults.
func DefaultConfig() Config {
	return Config{
		DelayWeight:           1.0,
		PlatformChangeWeight:  0.5,
		RerouteWeight:         0.8,
		PassengerImpactWeight: 1.2,

		MaxDelaySeconds:    30 * 60,
		MinHeadwaySeconds:  120,
		StationDwellBuffer: 60,

		AllowSingleTrackMeets:    true,
		PreferDoubleTrackRouting: true,
		SingleTrackMeetBuffer:    300,

		AllowPlatformReassignment: true,
		OptimizePlatformUsage:     true,
		PlatformBuffer:            180,
		PlatformChangeCost:        180,
	}
}

// priorityBoost assigns the fixed train-kind boost used by priority
// computation (base 50 + boost - accrued delay). The original scheduler
// left this a TODO ("assume passenger trains have higher priority"); the
// ordering below (high-speed > intercity > regional > freight) is the
// one named in the decision table, concrete numbers are this resolver's
// own choice.
func priorityBoost(k schedule.TrainKind) int {
	switch k {
	case schedule.HighSpeed:
		return 30
	case schedule.Intercity:
		return 20
	case schedule.Regional:
		return 10
	case schedule.Freight:
		return 0
	default:
		return 0
	}
}
