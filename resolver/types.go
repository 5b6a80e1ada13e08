// Package resolver implements the priority-weighted conflict resolver
// ("RailwayAI"): strategy selection per conflict class, meet-point and
// alternative-platform search, and outcome quality scoring.
package resolver

// Strategy is the closed set of resolution actions a result may report.
type Strategy string

const (
	DelayTrain       Strategy = "delay"
	Reroute          Strategy = "reroute"
	ChangePlatform   Strategy = "change-platform"
	AdjustSpeed      Strategy = "adjust-speed"
	AddMeetPoint     Strategy = "add-meet-point"
	PriorityBased    Strategy = "priority-based"
)

// Result reports the outcome of resolving one conflict.
type Result struct {
	Success        bool
	Strategy       Strategy
	Description    string
	ModifiedTrains []string
	TotalDelaySec  float64
	QualityScore   float64
}

// BatchResult aggregates Result over a resolve_all pass.
type BatchResult struct {
	Success        bool
	Resolved       int
	Attempted      int
	TotalDelaySec  float64
	ModifiedTrains []string
	QualityScore   float64
	Description    string
}

// Stats tracks running counters across resolver calls, mirroring the
// original scheduler's std::map<string,int> statistics block.
type Stats struct {
	TotalResolutions       int
	SuccessfulResolutions  int
	DoubleTrackResolutions int
	SingleTrackResolutions int
	StationResolutions     int
	DelaysApplied          int
	PlatformsChanged       int
}
