package railway

import (
	"testing"
	"time"

	"github.com/railwayai/railwayai/railerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, g *Graph, id string, platforms int) {
	t.Helper()
	require.NoError(t, g.AddNode(Node{ID: id, Name: id, Kind: Station, PlatformCount: platforms}))
}

func TestAddNodeDuplicate(t *testing.T) {
	g := New()
	mustNode(t, g, "MIL", 12)
	err := g.AddNode(Node{ID: "MIL"})
	require.Error(t, err)
	assert.True(t, railerr.Is(err, railerr.DuplicateID))
}

func TestAddEdgeUnknownNode(t *testing.T) {
	g := New()
	mustNode(t, g, "MIL", 12)
	err := g.AddEdge(Edge{ID: "e1", From: "MIL", To: "MON", LengthKm: 1, MaxSpeedKmh: 100, Capacity: 1})
	require.Error(t, err)
	assert.True(t, railerr.Is(err, railerr.UnknownID))
}

func TestRemoveNodeSeversEdges(t *testing.T) {
	g := New()
	mustNode(t, g, "A", 2)
	mustNode(t, g, "B", 2)
	require.NoError(t, g.AddEdge(Edge{ID: "e1", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.RemoveNode("B"))
	_, ok := g.Edge("e1")
	assert.False(t, ok)
	assert.Empty(t, g.GetNeighbors("A"))
}

func TestHasEdgeBidirectional(t *testing.T) {
	g := New()
	mustNode(t, g, "A", 2)
	mustNode(t, g, "B", 2)
	require.NoError(t, g.AddEdge(Edge{ID: "e1", From: "A", To: "B", LengthKm: 35, MaxSpeedKmh: 100, Capacity: 1, Bidirectional: true}))
	assert.True(t, g.HasEdge("A", "B"))
	assert.True(t, g.HasEdge("B", "A"))
}

func TestShortestPathUnreachableIsEmptyNotError(t *testing.T) {
	g := New()
	mustNode(t, g, "A", 1)
	mustNode(t, g, "B", 1)
	p := g.ShortestPath("A", "B", ByDistance)
	assert.True(t, p.Empty())
}

func TestShortestPathSelfLoop(t *testing.T) {
	g := New()
	mustNode(t, g, "A", 1)
	p := g.ShortestPath("A", "A", ByDistance)
	require.False(t, p.Empty())
	assert.Equal(t, []string{"A"}, p.Nodes)
	assert.Zero(t, p.TotalDistance)
}

func TestShortestPathPicksCheaperEdge(t *testing.T) {
	g := New()
	for _, id := range []string{"A", "B", "C"} {
		mustNode(t, g, id, 2)
	}
	require.NoError(t, g.AddEdge(Edge{ID: "direct", From: "A", To: "C", LengthKm: 100, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.AddEdge(Edge{ID: "ab", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.AddEdge(Edge{ID: "bc", From: "B", To: "C", LengthKm: 10, MaxSpeedKmh: 100, Capacity: 1}))

	p := g.ShortestPath("A", "C", ByDistance)
	require.False(t, p.Empty())
	assert.Equal(t, []string{"A", "B", "C"}, p.Nodes)
	assert.InDelta(t, 20.0, p.TotalDistance, 0.001)
}

// TestKShortestPathsUniqueness exercises scenario S3: two edge-disjoint
// A->C paths via B and via D of different lengths.
func TestKShortestPathsUniqueness(t *testing.T) {
	g := New()
	for _, id := range []string{"A", "B", "C", "D"} {
		mustNode(t, g, id, 2)
	}
	require.NoError(t, g.AddEdge(Edge{ID: "ab", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.AddEdge(Edge{ID: "bc", From: "B", To: "C", LengthKm: 10, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.AddEdge(Edge{ID: "ad", From: "A", To: "D", LengthKm: 15, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.AddEdge(Edge{ID: "dc", From: "D", To: "C", LengthKm: 15, MaxSpeedKmh: 100, Capacity: 1}))

	paths, err := g.KShortestPaths("A", "C", 3, ByDistance)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.InDelta(t, 0.0, paths[0].Delta, 0.001)
	assert.Greater(t, paths[1].Delta, 0.0)
	assert.LessOrEqual(t, costOf(paths[0], ByDistance), costOf(paths[1], ByDistance))

	nodeSeqs := map[string]bool{}
	for _, p := range paths {
		for i := 0; i < len(p.Nodes)-1; i++ {
			assert.NotEqual(t, p.Nodes[i], p.Nodes[i+1])
		}
		seen := map[string]bool{}
		for _, n := range p.Nodes {
			assert.False(t, seen[n], "path must be simple/loopless")
			seen[n] = true
		}
		key := pathKey(p.Nodes)
		assert.False(t, nodeSeqs[key], "no two returned paths share a node sequence")
		nodeSeqs[key] = true
	}
}

func TestKShortestPathsBounds(t *testing.T) {
	g := New()
	mustNode(t, g, "A", 1)
	mustNode(t, g, "B", 1)
	require.NoError(t, g.AddEdge(Edge{ID: "e1", From: "A", To: "B", LengthKm: 1, MaxSpeedKmh: 10, Capacity: 1}))
	_, err := g.KShortestPaths("A", "B", 0, ByDistance)
	require.Error(t, err)
	assert.True(t, railerr.Is(err, railerr.InvalidArgument))
	_, err = g.KShortestPaths("A", "B", 11, ByDistance)
	require.Error(t, err)
}

func TestPathFeasibilitySumIdentity(t *testing.T) {
	g := New()
	for _, id := range []string{"A", "B", "C"} {
		mustNode(t, g, id, 2)
	}
	require.NoError(t, g.AddEdge(Edge{ID: "ab", From: "A", To: "B", LengthKm: 12.5, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.AddEdge(Edge{ID: "bc", From: "B", To: "C", LengthKm: 8.25, MaxSpeedKmh: 100, Capacity: 1}))
	paths, err := g.KShortestPaths("A", "C", 1, ByDistance)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	var sum float64
	for _, eid := range paths[0].Edges {
		e, ok := g.Edge(eid)
		require.True(t, ok)
		sum += e.LengthKm
	}
	assert.InDelta(t, paths[0].TotalDistance, sum, 0.0001)
}

func TestNetworkStats(t *testing.T) {
	g := New()
	for _, id := range []string{"A", "B", "C"} {
		mustNode(t, g, id, 2)
	}
	require.NoError(t, g.AddEdge(Edge{ID: "ab", From: "A", To: "B", LengthKm: 10, Kind: Double, MaxSpeedKmh: 100, Capacity: 1}))
	require.NoError(t, g.AddEdge(Edge{ID: "bc", From: "B", To: "C", LengthKm: 30, Kind: Single, MaxSpeedKmh: 100, Capacity: 1}))
	stats := g.NetworkStats()
	assert.Equal(t, 3, stats.NodeCount)
	assert.Equal(t, 2, stats.EdgeCount)
	assert.InDelta(t, 40.0, stats.TotalLengthKm, 0.001)
	assert.Equal(t, 1, stats.CountByKind[Double])
	assert.Equal(t, 1, stats.CountByKind[Single])
	assert.InDelta(t, 10.0, stats.MinEdgeLengthKm, 0.001)
	assert.InDelta(t, 30.0, stats.MaxEdgeLengthKm, 0.001)
}

func TestPlatformLedgerNonOverlap(t *testing.T) {
	g := New()
	mustNode(t, g, "COM", 3)
	n, _ := g.Node("COM")
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, n.Reserve(1, "IC101", base, base.Add(5*time.Minute)))
	err := n.Reserve(1, "R205", base.Add(2*time.Minute), base.Add(8*time.Minute))
	require.Error(t, err)
	assert.True(t, railerr.Is(err, railerr.PlatformBusy))

	require.NoError(t, n.Reserve(1, "R205", base.Add(10*time.Minute), base.Add(15*time.Minute)))
	assert.False(t, n.IsPlatformFree(1, base, base.Add(5*time.Minute)))
	assert.True(t, n.IsPlatformFree(1, base.Add(5*time.Minute), base.Add(10*time.Minute)))
}

func TestFirstFreePlatformLowestNumbered(t *testing.T) {
	g := New()
	mustNode(t, g, "MON", 4)
	n, _ := g.Node("MON")
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, n.Reserve(1, "T1", base, base.Add(time.Hour)))
	p, ok := n.FirstFreePlatform(base, base.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, 2, p)
}

func TestReserveInvalidPlatform(t *testing.T) {
	g := New()
	mustNode(t, g, "COM", 3)
	n, _ := g.Node("COM")
	base := time.Now()
	err := n.Reserve(0, "T1", base, base.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, railerr.Is(err, railerr.InvalidArgument))
}

func TestReleaseForAndClear(t *testing.T) {
	g := New()
	mustNode(t, g, "COM", 3)
	n, _ := g.Node("COM")
	base := time.Now()
	require.NoError(t, n.Reserve(1, "T1", base, base.Add(time.Hour)))
	n.ReleaseFor(1, "T1")
	assert.True(t, n.IsPlatformFree(1, base, base.Add(time.Hour)))

	require.NoError(t, n.Reserve(2, "T2", base, base.Add(time.Hour)))
	n.ClearPlatforms()
	assert.True(t, n.IsPlatformFree(2, base, base.Add(time.Hour)))
}
