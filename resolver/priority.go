package resolver

import "github.com/railwayai/railwayai/schedule"

// priorityTracker computes per-train priority (base 50 + kind boost -
// accrued delay) and records delay as the resolver applies it, so a
// doubly-delayed train is deprioritized for further delay within the
// same resolve_all pass.
type priorityTracker struct {
	kinds   map[string]schedule.TrainKind
	accrued map[string]float64
}

func newPriorityTracker(schedules []*schedule.TrainSchedule, trains []schedule.Train) *priorityTracker {
	kinds := make(map[string]schedule.TrainKind, len(trains))
	for _, tr := range trains {
		kinds[tr.ID] = tr.Kind
	}
	return &priorityTracker{kinds: kinds, accrued: make(map[string]float64, len(schedules))}
}

func (p *priorityTracker) priority(trainID string) int {
	return 50 + priorityBoost(p.kinds[trainID]) - int(p.accrued[trainID])
}

func (p *priorityTracker) recordDelay(trainID string, seconds float64) {
	p.accrued[trainID] += seconds
}

// lowerPriority returns the train id that should receive the next
// delay: the one with strictly lower priority, ties broken
// lexicographically by train id.
func (p *priorityTracker) lowerPriority(a, b string) string {
	pa, pb := p.priority(a), p.priority(b)
	if pa == pb {
		if a < b {
			return b
		}
		return a
	}
	if pa < pb {
		return a
	}
	return b
}
