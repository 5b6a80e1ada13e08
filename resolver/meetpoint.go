package resolver

import (
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
)

// findMeetPoint returns the first station, in the order train1's stops
// are visited, that both schedules stop at and that has passing
// capability (>= 2 platforms). Determinism is required by contract, not
// cost-optimality.
func findMeetPoint(g *railway.Graph, train1, train2 *schedule.TrainSchedule) (string, bool) {
	for _, s1 := range train1.Stops {
		for _, s2 := range train2.Stops {
			if s1.NodeID != s2.NodeID {
				continue
			}
			if hasPassingCapability(g, s1.NodeID) {
				return s1.NodeID, true
			}
		}
	}
	return "", false
}

func hasPassingCapability(g *railway.Graph, nodeID string) bool {
	n, ok := g.Node(nodeID)
	if !ok {
		return false
	}
	return n.PlatformCount >= 2
}
