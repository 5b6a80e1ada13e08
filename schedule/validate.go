package schedule

import "github.com/railwayai/railwayai/railway"

// PathExists abstracts the graph lookup the topological predicate needs.
// *railway.Graph does not implement it directly; NewGraphPathChecker
// adapts a graph to it (ShortestPath's emptiness check).
type PathExists interface {
	PathExists(from, to string) bool
}

// graphPathChecker adapts *railway.Graph to PathExists.
type graphPathChecker struct{ g *railway.Graph }

func (c graphPathChecker) PathExists(from, to string) bool {
	return !c.g.ShortestPath(from, to, railway.ByDistance).Empty()
}

// NewGraphPathChecker wraps a railway.Graph as a PathExists.
func NewGraphPathChecker(g *railway.Graph) PathExists { return graphPathChecker{g: g} }

// IsChronological reports whether stops are in non-decreasing arrival
// order and each stop's arrival <= departure.
func (t *TrainSchedule) IsChronological() bool {
	var prevArrival *Stop
	for i := range t.Stops {
		s := t.Stops[i]
		if s.Arrival.After(s.Departure) {
			return false
		}
		if prevArrival != nil && s.Arrival.Before(prevArrival.Arrival) {
			return false
		}
		prevArrival = &t.Stops[i]
	}
	return true
}

// IsTopological reports whether each consecutive pair of stops has a
// graph path between them (not necessarily a direct edge).
func (t *TrainSchedule) IsTopological(g PathExists) bool {
	for i := 0; i+1 < len(t.Stops); i++ {
		if !g.PathExists(t.Stops[i].NodeID, t.Stops[i+1].NodeID) {
			return false
		}
	}
	return true
}

// IsPlatformValid reports whether every specified platform lies within
// [1, PlatformCount] for its node.
func (t *TrainSchedule) IsPlatformValid(g *railway.Graph) bool {
	for _, s := range t.Stops {
		if !s.HasPlatform() {
			continue
		}
		n, ok := g.Node(s.NodeID)
		if !ok {
			return false
		}
		if s.Platform < 1 || s.Platform > n.PlatformCount {
			return false
		}
	}
	return true
}

// IsValid reports whether all three predicates hold.
func (t *TrainSchedule) IsValid(g *railway.Graph) bool {
	return t.IsChronological() && t.IsTopological(NewGraphPathChecker(g)) && t.IsPlatformValid(g)
}
