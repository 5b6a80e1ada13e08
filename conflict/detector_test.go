package conflict

import (
	"testing"
	"time"

	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time { return time.Date(2026, 1, 1, h, m, 0, 0, time.UTC) }

// TestPlatformConflictScenarioS1 mirrors spec scenario S1.
func TestPlatformConflictScenarioS1(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "MIL", PlatformCount: 12}))
	require.NoError(t, g.AddNode(railway.Node{ID: "MON", PlatformCount: 4}))
	require.NoError(t, g.AddNode(railway.Node{ID: "COM", PlatformCount: 3}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "mil_mon", From: "MIL", To: "MON", LengthKm: 15, MaxSpeedKmh: 140, Kind: railway.Double, Capacity: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "mon_com", From: "MON", To: "COM", LengthKm: 30, MaxSpeedKmh: 120, Kind: railway.Single, Capacity: 1}))

	ic101 := &schedule.TrainSchedule{ID: "s1", TrainID: "IC101", Stops: []schedule.Stop{
		{NodeID: "MIL", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true, Platform: 1},
		{NodeID: "MON", Arrival: at(8, 8), Departure: at(8, 10), IsStop: true, Platform: 1},
		{NodeID: "COM", Arrival: at(8, 25), Departure: at(8, 25), IsStop: true, Platform: 1},
	}}
	r205 := &schedule.TrainSchedule{ID: "s2", TrainID: "R205", Stops: []schedule.Stop{
		{NodeID: "COM", Arrival: at(8, 20), Departure: at(8, 20), IsStop: true, Platform: 1},
		{NodeID: "MON", Arrival: at(8, 35), Departure: at(8, 37), IsStop: true, Platform: 2},
		{NodeID: "MIL", Arrival: at(8, 47), Departure: at(8, 47), IsStop: true, Platform: 3},
	}}

	d := New(g, DefaultConfig())
	conflicts := d.DetectAll([]*schedule.TrainSchedule{ic101, r205})

	var found *Conflict
	for i := range conflicts {
		c := conflicts[i]
		if c.Kind == PlatformConflict && c.Location == "COM" && c.Platform == 1 {
			found = &conflicts[i]
		}
	}
	require.NotNil(t, found, "expected a platform conflict at COM platform 1")
	assert.GreaterOrEqual(t, found.Severity, 4.0)
}

// TestHeadOnScenarioS2 mirrors spec scenario S2.
func TestHeadOnScenarioS2(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A", PlatformCount: 2}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B", PlatformCount: 3}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "ab", From: "A", To: "B", LengthKm: 35, MaxSpeedKmh: 100, Kind: railway.Single, Capacity: 1, Bidirectional: true}))

	t1 := &schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{
		{NodeID: "A", Arrival: at(10, 0), Departure: at(10, 0), IsStop: true},
		{NodeID: "B", Arrival: at(10, 25), Departure: at(10, 25), IsStop: true},
	}}
	t2 := &schedule.TrainSchedule{ID: "s2", TrainID: "T2", Stops: []schedule.Stop{
		{NodeID: "B", Arrival: at(10, 0), Departure: at(10, 0), IsStop: true},
		{NodeID: "A", Arrival: at(10, 25), Departure: at(10, 25), IsStop: true},
	}}

	d := New(g, DefaultConfig())
	conflicts := d.DetectAll([]*schedule.TrainSchedule{t1, t2})

	var headOns []Conflict
	for _, c := range conflicts {
		if c.Kind == HeadOn {
			headOns = append(headOns, c)
		}
	}
	require.Len(t, headOns, 1)
	assert.Equal(t, 10.0, headOns[0].Severity)
}

// TestTimingViolationScenarioS4 mirrors spec scenario S4: 50km on a
// 100km/h double track (graph-minimum 30min) scheduled in 20 minutes
// (implied 150km/h, physically exceeding the track's max speed) is
// flagged as a timing violation.
func TestTimingViolationScenarioS4(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A", PlatformCount: 2}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B", PlatformCount: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "ab", From: "A", To: "B", LengthKm: 50, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))

	s := &schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{
		{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true},
		{NodeID: "B", Arrival: at(8, 20), Departure: at(8, 20), IsStop: true},
	}}
	d := New(g, DefaultConfig())
	conflicts := d.DetectAll([]*schedule.TrainSchedule{s})
	found := false
	for _, c := range conflicts {
		if c.Kind == TimingViolation {
			found = true
		}
	}
	assert.True(t, found, "20 min over 50km on a 100km/h track (implied 150km/h) should be flagged")
}

func TestTimingViolationDetectsShortTravel(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A", PlatformCount: 2}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B", PlatformCount: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "ab", From: "A", To: "B", LengthKm: 50, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))

	// Graph-minimum at 100km/h for 50km = 30 minutes. Schedule only 15min.
	s := &schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{
		{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true},
		{NodeID: "B", Arrival: at(8, 15), Departure: at(8, 15), IsStop: true},
	}}
	d := New(g, DefaultConfig())
	conflicts := d.DetectAll([]*schedule.TrainSchedule{s})
	found := false
	for _, c := range conflicts {
		if c.Kind == TimingViolation {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTimingViolationDwellTooShort(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A", PlatformCount: 2}))
	s := &schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{
		{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0).Add(30 * time.Second), IsStop: true},
	}}
	d := New(g, DefaultConfig())
	conflicts := d.DetectAll([]*schedule.TrainSchedule{s})
	found := false
	for _, c := range conflicts {
		if c.Kind == TimingViolation && c.Location == "A" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDetectorIdempotenceOnUnchangedInput(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A", PlatformCount: 2}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B", PlatformCount: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "ab", From: "A", To: "B", LengthKm: 35, MaxSpeedKmh: 100, Kind: railway.Single, Capacity: 1, Bidirectional: true}))
	t1 := &schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(10, 0), Departure: at(10, 0), IsStop: true}, {NodeID: "B", Arrival: at(10, 25), Departure: at(10, 25), IsStop: true}}}
	t2 := &schedule.TrainSchedule{ID: "s2", TrainID: "T2", Stops: []schedule.Stop{{NodeID: "B", Arrival: at(10, 0), Departure: at(10, 0), IsStop: true}, {NodeID: "A", Arrival: at(10, 25), Departure: at(10, 25), IsStop: true}}}

	d := New(g, DefaultConfig())
	first := d.DetectAll([]*schedule.TrainSchedule{t1, t2})
	second := d.DetectAll([]*schedule.TrainSchedule{t1, t2})
	require.Equal(t, len(first), len(second))
	assert.Equal(t, dedupKey(first[0]), dedupKey(second[0]))
}

func TestDedupNoDuplicateTriples(t *testing.T) {
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A", PlatformCount: 2}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B", PlatformCount: 2}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "ab", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))
	t1 := &schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true}, {NodeID: "B", Arrival: at(8, 10), Departure: at(8, 10), IsStop: true}}}
	t2 := &schedule.TrainSchedule{ID: "s2", TrainID: "T2", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 1), Departure: at(8, 1), IsStop: true}, {NodeID: "B", Arrival: at(8, 11), Departure: at(8, 11), IsStop: true}}}

	d := New(g, DefaultConfig())
	conflicts := d.DetectAll([]*schedule.TrainSchedule{t1, t2})
	seen := map[string]bool{}
	for _, c := range conflicts {
		k := dedupKey(c)
		assert.False(t, seen[k])
		seen[k] = true
	}
}
