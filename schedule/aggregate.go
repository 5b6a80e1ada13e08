package schedule

import (
	"time"

	"github.com/railwayai/railwayai/railway"
)

// TotalDuration returns the last departure minus the first arrival.
func (t *TrainSchedule) TotalDuration() time.Duration {
	if len(t.Stops) == 0 {
		return 0
	}
	return t.Stops[len(t.Stops)-1].Departure.Sub(t.Stops[0].Arrival)
}

// TotalDistance sums the graph shortest distance over each consecutive
// stop pair.
func (t *TrainSchedule) TotalDistance(g *railway.Graph) float64 {
	var total float64
	for i := 0; i+1 < len(t.Stops); i++ {
		p := g.ShortestPath(t.Stops[i].NodeID, t.Stops[i+1].NodeID, railway.ByDistance)
		total += p.TotalDistance
	}
	return total
}

// AverageSpeedKmh is TotalDistance / TotalDuration, or 0 if the schedule
// has no elapsed time.
func (t *TrainSchedule) AverageSpeedKmh(g *railway.Graph) float64 {
	d := t.TotalDuration()
	if d <= 0 {
		return 0
	}
	return t.TotalDistance(g) / d.Hours()
}
