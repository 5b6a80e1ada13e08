package resolver

import (
	"testing"
	"time"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time { return time.Date(2026, 1, 1, h, m, 0, 0, time.UTC) }

// TestHeadOnResolutionScenarioS2 mirrors spec scenario S2: resolving the
// head-on conflict with allow_single_track_meets=true must delay the
// lower-priority train by at least single_track_meet_buffer (300s).
func TestHeadOnResolutionScenarioS2(t *testing.T) {
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
	schedules := []*schedule.TrainSchedule{t1, t2}
	trains := []schedule.Train{{ID: "T1", Kind: schedule.Regional}, {ID: "T2", Kind: schedule.Regional}}

	d := conflict.New(g, conflict.DefaultConfig())
	conflicts := d.DetectAll(schedules)
	require.NotEmpty(t, conflicts)

	cfg := DefaultConfig()
	require.True(t, cfg.AllowSingleTrackMeets)
	r := New(g, cfg)
	batch := r.ResolveAll(schedules, trains, conflicts)

	require.True(t, batch.Success)
	require.GreaterOrEqual(t, batch.Resolved, 1)
	assert.GreaterOrEqual(t, batch.TotalDelaySec, cfg.SingleTrackMeetBuffer)
}

func TestDoubleTrackEqualPriorityDistributesDelay(t *testing.T) {
	cfg := DefaultConfig()
	c := conflict.Conflict{Kind: conflict.SectionOverlap, Train1: "T1", Train2: "T2", SectionFrom: "A", SectionTo: "B", Severity: 5}
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A"}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B"}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "ab", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))

	t1 := &schedule.TrainSchedule{TrainID: "T1", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true}, {NodeID: "B", Arrival: at(8, 10), Departure: at(8, 10), IsStop: true}}}
	t2 := &schedule.TrainSchedule{TrainID: "T2", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 1), Departure: at(8, 1), IsStop: true}, {NodeID: "B", Arrival: at(8, 11), Departure: at(8, 11), IsStop: true}}}
	schedules := []*schedule.TrainSchedule{t1, t2}
	trains := []schedule.Train{{ID: "T1", Kind: schedule.Regional}, {ID: "T2", Kind: schedule.Regional}}

	r := New(g, cfg)
	batch := r.ResolveAll(schedules, trains, []conflict.Conflict{c})
	require.True(t, batch.Success)
	assert.Len(t, batch.ModifiedTrains, 2)
	assert.InDelta(t, cfg.MinHeadwaySeconds, batch.TotalDelaySec, 0.001)
}

func TestDoubleTrackHigherPriorityKeepsSchedule(t *testing.T) {
	cfg := DefaultConfig()
	c := conflict.Conflict{Kind: conflict.SectionOverlap, Train1: "FAST", Train2: "SLOW", SectionFrom: "A", SectionTo: "B", Severity: 5}
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A"}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B"}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "ab", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 100, Kind: railway.Double, Capacity: 2}))

	fast := &schedule.TrainSchedule{TrainID: "FAST", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true}, {NodeID: "B", Arrival: at(8, 10), Departure: at(8, 10), IsStop: true}}}
	slow := &schedule.TrainSchedule{TrainID: "SLOW", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 1), Departure: at(8, 1), IsStop: true}, {NodeID: "B", Arrival: at(8, 11), Departure: at(8, 11), IsStop: true}}}
	schedules := []*schedule.TrainSchedule{fast, slow}
	trains := []schedule.Train{{ID: "FAST", Kind: schedule.HighSpeed}, {ID: "SLOW", Kind: schedule.Freight}}

	r := New(g, cfg)
	batch := r.ResolveAll(schedules, trains, []conflict.Conflict{c})
	require.True(t, batch.Success)
	require.Equal(t, []string{"SLOW"}, batch.ModifiedTrains)
	assert.Equal(t, at(8, 1).Add(time.Duration((cfg.MinHeadwaySeconds+30)*float64(time.Second))), slow.Stops[0].Arrival)
}

func TestPlatformConflictChangesPlatformWhenAvailable(t *testing.T) {
	cfg := DefaultConfig()
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "COM", PlatformCount: 3}))

	t1 := &schedule.TrainSchedule{TrainID: "IC101", Stops: []schedule.Stop{{NodeID: "COM", Arrival: at(8, 20), Departure: at(8, 25), IsStop: true, Platform: 1}}}
	t2 := &schedule.TrainSchedule{TrainID: "R205", Stops: []schedule.Stop{{NodeID: "COM", Arrival: at(8, 20), Departure: at(8, 25), IsStop: true, Platform: 1}}}
	schedules := []*schedule.TrainSchedule{t1, t2}
	trains := []schedule.Train{{ID: "IC101", Kind: schedule.Intercity}, {ID: "R205", Kind: schedule.Regional}}

	c := conflict.Conflict{Kind: conflict.PlatformConflict, Train1: "IC101", Train2: "R205", Location: "COM", Platform: 1, Severity: 5}
	r := New(g, cfg)
	batch := r.ResolveAll(schedules, trains, []conflict.Conflict{c})

	require.True(t, batch.Success)
	require.Equal(t, []string{"R205"}, batch.ModifiedTrains)
	assert.NotEqual(t, 1, t2.Stops[0].Platform)
	assert.Equal(t, 1, t1.Stops[0].Platform)
}

func TestPlatformConflictDelaysWhenNoAlternative(t *testing.T) {
	cfg := DefaultConfig()
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "COM", PlatformCount: 1}))

	t1 := &schedule.TrainSchedule{TrainID: "IC101", Stops: []schedule.Stop{{NodeID: "COM", Arrival: at(8, 20), Departure: at(8, 25), IsStop: true, Platform: 1}}}
	t2 := &schedule.TrainSchedule{TrainID: "R205", Stops: []schedule.Stop{{NodeID: "COM", Arrival: at(8, 20), Departure: at(8, 25), IsStop: true, Platform: 1}}}
	schedules := []*schedule.TrainSchedule{t1, t2}
	trains := []schedule.Train{{ID: "IC101", Kind: schedule.Intercity}, {ID: "R205", Kind: schedule.Regional}}

	c := conflict.Conflict{Kind: conflict.PlatformConflict, Train1: "IC101", Train2: "R205", Location: "COM", Platform: 1, Severity: 5}
	r := New(g, cfg)
	batch := r.ResolveAll(schedules, trains, []conflict.Conflict{c})

	require.True(t, batch.Success)
	require.Equal(t, []string{"R205"}, batch.ModifiedTrains)
	assert.InDelta(t, cfg.PlatformBuffer+cfg.StationDwellBuffer, batch.TotalDelaySec, 0.001)
}

func TestTimingViolationShiftsByMinHeadway(t *testing.T) {
	cfg := DefaultConfig()
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A"}))

	t1 := &schedule.TrainSchedule{TrainID: "T1", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true}}}
	schedules := []*schedule.TrainSchedule{t1}
	trains := []schedule.Train{{ID: "T1", Kind: schedule.Regional}}

	c := conflict.Conflict{Kind: conflict.TimingViolation, Train1: "T1", Location: "A->B", Severity: 3}
	r := New(g, cfg)
	batch := r.ResolveAll(schedules, trains, []conflict.Conflict{c})

	require.True(t, batch.Success)
	assert.Equal(t, cfg.MinHeadwaySeconds, batch.TotalDelaySec)
	assert.Equal(t, at(8, 0).Add(time.Duration(cfg.MinHeadwaySeconds*float64(time.Second))), t1.Stops[0].Arrival)
}

func TestResolveAllProcessesHighestSeverityFirst(t *testing.T) {
	cfg := DefaultConfig()
	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A"}))
	schedules := []*schedule.TrainSchedule{
		{TrainID: "T1", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true}}},
		{TrainID: "T2", Stops: []schedule.Stop{{NodeID: "A", Arrival: at(8, 0), Departure: at(8, 0), IsStop: true}}},
	}
	trains := []schedule.Train{{ID: "T1", Kind: schedule.Regional}, {ID: "T2", Kind: schedule.Regional}}

	conflicts := []conflict.Conflict{
		{Kind: conflict.TimingViolation, Train1: "T1", Location: "low", Severity: 1},
		{Kind: conflict.TimingViolation, Train1: "T2", Location: "high", Severity: 9},
	}
	r := New(g, cfg)
	batch := r.ResolveAll(schedules, trains, conflicts)
	require.True(t, batch.Success)
	require.Len(t, batch.ModifiedTrains, 2)
	assert.Equal(t, "T2", batch.ModifiedTrains[0])
}

func TestQualityScoreClampedAndMonotonicInDelay(t *testing.T) {
	cfg := DefaultConfig()
	low := qualityScore(cfg, 60, 1)
	high := qualityScore(cfg, 1800, 1)
	assert.Greater(t, low, high)
	assert.GreaterOrEqual(t, high, 0.0)
	assert.LessOrEqual(t, low, 1.0)
}
