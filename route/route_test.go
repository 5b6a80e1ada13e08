package route

import (
	"testing"
	"time"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond builds A -> B -> E (direct, fast) and A -> C -> D -> E
// (alternative, avoiding the B-E edge).
func buildDiamond(t *testing.T) *railway.Graph {
	g := railway.New()
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, g.AddNode(railway.Node{ID: id, PlatformCount: 2}))
	}
	require.NoError(t, g.AddEdge(railway.Edge{ID: "a_b", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 120, Kind: railway.Double, Capacity: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "b_e", From: "B", To: "E", LengthKm: 10, MaxSpeedKmh: 120, Kind: railway.Double, Capacity: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "a_c", From: "A", To: "C", LengthKm: 12, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "c_d", From: "C", To: "D", LengthKm: 6, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "d_e", From: "D", To: "E", LengthKm: 6, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))
	return g
}

// TestApplyRerouteScenarioS6 mirrors spec scenario S6.
func TestApplyRerouteScenarioS6(t *testing.T) {
	g := buildDiamond(t)
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(40 * time.Minute)
	s := &schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{
		{NodeID: "A", Arrival: start, Departure: start, IsStop: true},
		{NodeID: "B", Arrival: start.Add(5 * time.Minute), Departure: start.Add(6 * time.Minute), IsStop: true},
		{NodeID: "E", Arrival: end, Departure: end, IsStop: true},
	}}

	conflicts := []conflict.Conflict{{Kind: conflict.SectionOverlap, Location: "b_e", Severity: 6}}
	o := New(g, DefaultConfig())
	alt, ok := o.FindBestReroute(s, conflicts)
	require.True(t, ok)
	assert.Greater(t, alt.Quality.OverallScore, 0.0)
	for _, eid := range alt.Path.Edges {
		assert.NotEqual(t, "b_e", eid)
	}

	origFirst := s.Stops[0]
	origLast := s.Stops[len(s.Stops)-1]
	require.NoError(t, ApplyReroute(s, alt))

	assert.Equal(t, origFirst, s.Stops[0])
	assert.Equal(t, origLast.NodeID, s.Stops[len(s.Stops)-1].NodeID)
	assert.Equal(t, origLast.Arrival, s.Stops[len(s.Stops)-1].Arrival)

	var gotNodes []string
	for _, st := range s.Stops {
		gotNodes = append(gotNodes, st.NodeID)
	}
	assert.Equal(t, alt.Path.Nodes, gotNodes)
}

func TestFindAlternativesExcludesBasePath(t *testing.T) {
	g := buildDiamond(t)
	o := New(g, DefaultConfig())
	alts := o.FindAlternatives("A", "E", nil, nil)
	require.NotEmpty(t, alts)
	base := g.ShortestPath("A", "E", railway.ByDistance)
	for _, a := range alts {
		assert.NotEqual(t, base.Nodes, a.Path.Nodes)
	}
}

func TestFindAlternativesRespectsExcludedEdges(t *testing.T) {
	g := buildDiamond(t)
	o := New(g, DefaultConfig())
	alts := o.FindAlternatives("A", "E", []string{"c_d"}, nil)
	for _, a := range alts {
		for _, eid := range a.Path.Edges {
			assert.NotEqual(t, "c_d", eid)
		}
	}
}

func TestDistanceScoreBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1.0, distanceScore(cfg, 10, 20))
	assert.Equal(t, 1.0, distanceScore(cfg, 20, 20))
	assert.InDelta(t, 0.5, distanceScore(cfg, 25, 20), 0.001) // 1.25x -> midpoint to the 1.5x ceiling
	assert.Equal(t, 0.0, distanceScore(cfg, 45, 20))          // beyond multiplier
}

func TestConflictScorePenalizesPerHit(t *testing.T) {
	p := railway.Path{Edges: []string{"a_b", "b_e"}}
	none := conflictScore(p, nil)
	assert.Equal(t, 1.0, none)
	one := conflictScore(p, []conflict.Conflict{{Location: "b_e"}})
	assert.InDelta(t, 0.8, one, 0.001)
}

func TestTrackQualityScorePrefersHighSpeed(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A"}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B"}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "a_b", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 250, Kind: railway.HighSpeed, Capacity: 2}))
	cfg := DefaultConfig()
	p := railway.Path{Edges: []string{"a_b"}}
	score := trackQualityScore(cfg, g, p)
	assert.Greater(t, score, 0.5)
}
