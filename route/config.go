package route

// Config mirrors the decision table's scoring weights (must sum to 1.0)
// and constraints.
type Config struct {
	DistanceWeight     float64
	TimeWeight         float64
	ConflictWeight     float64
	TrackQualityWeight float64

	MaxDistanceMultiplier float64
	MaxTimeMultiplier     float64
	MaxAlternatives       int

	PreferHighSpeed  bool
	AvoidSingleTrack bool
	MinimizeStops    bool
}

// DefaultConfig returns the optimizer's reference defaults.
func DefaultConfig() Config {
	return Config{
		DistanceWeight:     0.3,
		TimeWeight:         0.3,
		ConflictWeight:     0.3,
		TrackQualityWeight: 0.1,

		MaxDistanceMultiplier: 1.5,
		MaxTimeMultiplier:     1.5,
		MaxAlternatives:       5,

		PreferHighSpeed:  true,
		AvoidSingleTrack: true,
		MinimizeStops:    true,
	}
}
