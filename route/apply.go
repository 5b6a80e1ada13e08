package route

import (
	"time"

	"github.com/railwayai/railwayai/railerr"
	"github.com/railwayai/railwayai/schedule"
)

const rerouteDwell = 2 * time.Minute

// ApplyReroute rewrites s's stop sequence to follow alt.Path, preserving
// the original first stop's times exactly. Intermediate stops are
// regenerated with a uniform-distribution travel time estimate (arrivals
// evenly spaced by stop index; segment lengths are not used) within the
// window between the first stop's departure and the last stop's
// original arrival, each with a 2-minute dwell. The last stop keeps its
// original times unless the final intermediate departure runs past its
// arrival; then its arrival and departure are offset later by that
// overrun so time ordering stays monotonic.
func ApplyReroute(s *schedule.TrainSchedule, alt Alternative) error {
	if len(s.Stops) < 2 {
		return railerr.New(railerr.InvalidArgument, "route.ApplyReroute")
	}
	if alt.Path.Empty() {
		return railerr.New(railerr.InvalidArgument, "route.ApplyReroute")
	}

	first := s.Stops[0]
	last := s.Stops[len(s.Stops)-1]
	window := last.Arrival.Sub(first.Departure)

	nodes := alt.Path.Nodes
	newStops := make([]schedule.Stop, 0, len(nodes))
	newStops = append(newStops, first)

	n := len(nodes) - 2 // intermediate node count
	if n > 0 && window > 0 {
		for i := 1; i <= n; i++ {
			frac := float64(i) / float64(n+1)
			arrival := first.Departure.Add(time.Duration(float64(window) * frac))
			departure := arrival.Add(rerouteDwell)
			newStops = append(newStops, schedule.Stop{
				NodeID:    nodes[i],
				Arrival:   arrival,
				Departure: departure,
				IsStop:    true,
			})
		}
	}
	if prev := newStops[len(newStops)-1]; prev.Departure.After(last.Arrival) {
		overrun := prev.Departure.Sub(last.Arrival)
		last.Arrival = last.Arrival.Add(overrun)
		last.Departure = last.Departure.Add(overrun)
	}
	newStops = append(newStops, last)

	s.Stops = newStops
	return nil
}
