package resolver

import (
	"time"

	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
)

// findAlternativePlatform searches platforms [1, platform_count] other
// than excluded for one with no time-overlapping reservation (buffer
// expanded) against any schedule's stop at the same station.
func findAlternativePlatform(g *railway.Graph, station string, desiredArrival, desiredDeparture time.Time, excluded int, schedules []*schedule.TrainSchedule, bufferSeconds float64) (int, bool) {
	n, ok := g.Node(station)
	if !ok {
		return 0, false
	}
	buf := time.Duration(bufferSeconds * float64(time.Second))

	for platform := 1; platform <= n.PlatformCount; platform++ {
		if platform == excluded {
			continue
		}
		available := true
	checkAll:
		for _, s := range schedules {
			for _, st := range s.Stops {
				if st.NodeID != station || st.Platform != platform {
					continue
				}
				if overlapsBuffered(desiredArrival, desiredDeparture, st.Arrival, st.Departure, buf) {
					available = false
					break checkAll
				}
			}
		}
		if available {
			return platform, true
		}
	}
	return 0, false
}

func overlapsBuffered(arr1, dep1, arr2, dep2 time.Time, buf time.Duration) bool {
	lo, hi := arr2.Add(-buf), dep2.Add(buf)
	if !arr1.Before(lo) && !arr1.After(hi) {
		return true
	}
	if !dep1.Before(lo) && !dep1.After(hi) {
		return true
	}
	if !arr1.After(arr2) && !dep1.Before(dep2) {
		return true
	}
	return false
}

// changePlatform mutates the stop at station in-place.
func changePlatform(s *schedule.TrainSchedule, station string, newPlatform int) bool {
	for i := range s.Stops {
		if s.Stops[i].NodeID == station {
			s.Stops[i].Platform = newPlatform
			return true
		}
	}
	return false
}
