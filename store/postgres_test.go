package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
)

// dsnFromEnv locates a test database, skipping the test when none is
// configured. These tests need a live Postgres and are not run by
// default; set RAILWAYAI_TEST_DATABASE_DSN to exercise them.
func dsnFromEnv(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("RAILWAYAI_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("RAILWAYAI_TEST_DATABASE_DSN not set; skipping Postgres-backed test")
	}
	return dsn
}

func TestSaveAndLoadNetworkRoundTrips(t *testing.T) {
	dsn := dsnFromEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A", Name: "Alpha", Kind: railway.Station, PlatformCount: 2}))
	require.NoError(t, g.AddNode(railway.Node{ID: "B", Name: "Bravo", Kind: railway.Station, PlatformCount: 1}))
	require.NoError(t, g.AddEdge(railway.Edge{ID: "a_b", From: "A", To: "B", LengthKm: 10, MaxSpeedKmh: 120, Kind: railway.Double, Capacity: 2}))

	id, err := s.SaveNetwork(ctx, "test-net", g, []string{"A", "B"})
	require.NoError(t, err)

	loaded, err := s.LoadNetwork(ctx, id)
	require.NoError(t, err)
	_, ok := loaded.Node("A")
	require.True(t, ok)
	_, ok = loaded.EdgeBetween("A", "B")
	require.True(t, ok)
}

func TestSaveScheduleAndConflictFlow(t *testing.T) {
	dsn := dsnFromEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	g := railway.New()
	require.NoError(t, g.AddNode(railway.Node{ID: "A"}))
	netID, err := s.SaveNetwork(ctx, "sched-net", g, []string{"A"})
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	tr := schedule.Train{ID: "T1", Name: "Express", Kind: schedule.HighSpeed, MaxSpeedKmh: 200}
	sc := schedule.TrainSchedule{ID: "s1", TrainID: "T1", Stops: []schedule.Stop{
		{NodeID: "A", Arrival: start, Departure: start, IsStop: true},
	}}
	_, err = s.SaveSchedule(ctx, netID, tr, sc)
	require.NoError(t, err)

	scheds, trains, err := s.LoadSchedules(ctx, netID)
	require.NoError(t, err)
	require.Len(t, scheds, 1)
	require.Len(t, trains, 1)

	conflictID, err := s.RecordConflict(ctx, netID, conflict.Conflict{Kind: conflict.PlatformConflict, Train1: "T1", Train2: "T2", Location: "A", Severity: 5})
	require.NoError(t, err)

	require.NoError(t, s.RecordMetric(ctx, "open_conflicts", 1, map[string]string{"network": netID.String()}))
	_ = conflictID
}
