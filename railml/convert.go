package railml

import (
	"github.com/railwayai/railwayai/railerr"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
)

// ToGraph builds a railway.Graph from parsed network data, running it
// through the graph's own invariant checks (duplicate IDs, dangling
// edge endpoints) rather than re-implementing them here.
func ToGraph(n NetworkData) (*railway.Graph, error) {
	g := railway.New()
	for _, nd := range n.Nodes {
		node := railway.Node{
			ID:            nd.ID,
			Name:          nd.Name,
			Kind:          railway.NodeKind(nd.Kind),
			Coordinates:   railway.Coordinates{Lat: nd.Lat, Lon: nd.Lon},
			Capacity:      nd.Capacity,
			PlatformCount: nd.PlatformCount,
		}
		if err := g.AddNode(node); err != nil {
			return nil, railerr.Wrap(railerr.InvalidArgument, "railml.ToGraph", err)
		}
	}
	for _, ed := range n.Edges {
		edge := railway.Edge{
			ID:            ed.ID,
			From:          ed.From,
			To:            ed.To,
			LengthKm:      ed.LengthKm,
			Kind:          railway.TrackKind(ed.Kind),
			MaxSpeedKmh:   ed.MaxSpeedKmh,
			Capacity:      ed.Capacity,
			Bidirectional: ed.Bidirectional,
		}
		if err := g.AddEdge(edge); err != nil {
			return nil, railerr.Wrap(railerr.InvalidArgument, "railml.ToGraph", err)
		}
	}
	return g, nil
}

// FromGraph flattens a railway.Graph back into plain NetworkData for
// export. It walks nodes in the order supplied by ids, since Graph
// itself does not expose iteration order guarantees.
func FromGraph(g *railway.Graph, nodeIDs []string) NetworkData {
	var nd NetworkData
	seen := make(map[string]bool)
	for _, id := range nodeIDs {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		nd.Nodes = append(nd.Nodes, NodeData{
			ID:            n.ID,
			Name:          n.Name,
			Kind:          string(n.Kind),
			Lat:           n.Coordinates.Lat,
			Lon:           n.Coordinates.Lon,
			Capacity:      n.Capacity,
			PlatformCount: n.PlatformCount,
		})
		for _, nbr := range g.GetNeighbors(id) {
			e, ok := g.EdgeBetween(id, nbr)
			if !ok || seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			nd.Edges = append(nd.Edges, EdgeData{
				ID:            e.ID,
				From:          e.From,
				To:            e.To,
				LengthKm:      e.LengthKm,
				Kind:          string(e.Kind),
				MaxSpeedKmh:   e.MaxSpeedKmh,
				Capacity:      e.Capacity,
				Bidirectional: e.Bidirectional,
			})
		}
	}
	return nd
}

// ToSchedules converts parsed schedule data into schedule.TrainSchedule
// values plus the schedule.Train each one runs with.
func ToSchedules(data []ScheduleData) ([]schedule.TrainSchedule, []schedule.Train) {
	schedules := make([]schedule.TrainSchedule, 0, len(data))
	trains := make([]schedule.Train, 0, len(data))
	for _, d := range data {
		stops := make([]schedule.Stop, 0, len(d.Stops))
		for _, s := range d.Stops {
			stops = append(stops, schedule.Stop{
				NodeID:    s.NodeID,
				Arrival:   s.Arrival,
				Departure: s.Departure,
				IsStop:    s.IsStop,
				Platform:  s.Platform,
			})
		}
		schedules = append(schedules, schedule.TrainSchedule{
			ID:      d.ScheduleID,
			TrainID: d.TrainID,
			Stops:   stops,
		})
		trains = append(trains, schedule.Train{
			ID:   d.TrainID,
			Name: d.TrainName,
			Kind: schedule.TrainKind(d.TrainKind),
		})
	}
	return schedules, trains
}

// FromSchedules flattens schedules/trains back into ScheduleData for
// export. trainsByID supplies the Name/Kind that TrainSchedule itself
// does not carry.
func FromSchedules(schedules []schedule.TrainSchedule, trainsByID map[string]schedule.Train) []ScheduleData {
	out := make([]ScheduleData, 0, len(schedules))
	for _, s := range schedules {
		t := trainsByID[s.TrainID]
		stops := make([]StopData, 0, len(s.Stops))
		for _, st := range s.Stops {
			stops = append(stops, StopData{
				NodeID:    st.NodeID,
				Arrival:   st.Arrival,
				Departure: st.Departure,
				IsStop:    st.IsStop,
				Platform:  st.Platform,
			})
		}
		out = append(out, ScheduleData{
			ScheduleID: s.ID,
			TrainID:    s.TrainID,
			TrainName:  t.Name,
			TrainKind:  string(t.Kind),
			Stops:      stops,
		})
	}
	return out
}
