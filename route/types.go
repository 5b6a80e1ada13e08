// Package route implements C6, the route optimizer: alternative-route
// search over k-shortest-paths, four-axis scoring, and schedule
// rerouting application.
package route

import "github.com/railwayai/railwayai/railway"

// Quality holds the per-axis and combined score for one candidate route.
type Quality struct {
	DistanceScore     float64
	TimeScore         float64
	ConflictScore     float64
	TrackQualityScore float64
	OverallScore      float64

	NumStops           int
	TotalDistanceKm     float64
	EstimatedTimeHours  float64
}

// Alternative pairs a candidate path with its quality assessment.
type Alternative struct {
	Path        railway.Path
	Quality     Quality
	Description string
}

// Stats reports the outcome of the last find_alternatives call.
type Stats struct {
	AlternativesConsidered int
	ValidAlternatives      int
	BestScore              float64
}
