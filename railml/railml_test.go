package railml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNetwork() NetworkData {
	return NetworkData{
		Nodes: []NodeData{
			{ID: "A", Name: "Alpha", Kind: "station", PlatformCount: 2, Capacity: 4, Lat: 1.5, Lon: 2.5},
			{ID: "B", Name: "Bravo", Kind: "station", PlatformCount: 1, Capacity: 2},
		},
		Edges: []EdgeData{
			{ID: "a_b", From: "A", To: "B", LengthKm: 42.5, Kind: "double", MaxSpeedKmh: 140, Capacity: 2, Bidirectional: true},
		},
	}
}

func sampleSchedules() []ScheduleData {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return []ScheduleData{
		{
			ScheduleID: "s1",
			TrainID:    "T1",
			TrainName:  "Express",
			TrainKind:  "high_speed",
			Stops: []StopData{
				{NodeID: "A", Arrival: start, Departure: start, IsStop: true},
				{NodeID: "B", Arrival: start.Add(30 * time.Minute), Departure: start.Add(32 * time.Minute), IsStop: true, Platform: 1},
			},
		},
	}
}

func TestRoundTripLegacy(t *testing.T) {
	n := sampleNetwork()
	scheds := sampleSchedules()

	data, stats, err := Export(n, scheds, Legacy, DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, Stats{Stations: 2, Tracks: 1, Trains: 1}, stats)

	v, err := DetectVersion(data)
	require.NoError(t, err)
	assert.Equal(t, Legacy, v)

	result, err := Parse(data, AutoDetect)
	require.NoError(t, err)
	assert.Equal(t, Legacy, result.Version)
	require.Len(t, result.Network.Nodes, 2)
	require.Len(t, result.Network.Edges, 1)
	require.Len(t, result.Schedules, 1)

	assert.Equal(t, n.Nodes[0].ID, result.Network.Nodes[0].ID)
	assert.Equal(t, n.Nodes[0].Name, result.Network.Nodes[0].Name)
	assert.Equal(t, n.Edges[0].ID, result.Network.Edges[0].ID)
	assert.Equal(t, n.Edges[0].LengthKm, result.Network.Edges[0].LengthKm)
	assert.Equal(t, n.Edges[0].Kind, result.Network.Edges[0].Kind)

	gotStops := result.Schedules[0].Stops
	require.Len(t, gotStops, 2)
	assert.True(t, scheds[0].Stops[0].Arrival.Equal(gotStops[0].Arrival))
	assert.True(t, scheds[0].Stops[1].Departure.Equal(gotStops[1].Departure))
	assert.Equal(t, 1, gotStops[1].Platform)
}

func TestRoundTripCurrent(t *testing.T) {
	n := sampleNetwork()
	scheds := sampleSchedules()

	data, stats, err := Export(n, scheds, Current, DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, Stats{Stations: 2, Tracks: 1, Trains: 1}, stats)

	v, err := DetectVersion(data)
	require.NoError(t, err)
	assert.Equal(t, Current, v)

	result, err := Parse(data, AutoDetect)
	require.NoError(t, err)
	assert.Equal(t, Current, result.Version)
	require.Len(t, result.Network.Nodes, 2)
	require.Len(t, result.Schedules, 1)
	assert.Equal(t, scheds[0].TrainID, result.Schedules[0].TrainID)
}

func TestExportOmitsTimetableWhenDisabled(t *testing.T) {
	n := sampleNetwork()
	opts := DefaultExportOptions()
	opts.ExportTimetable = false
	data, stats, err := Export(n, sampleSchedules(), Current, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Trains)

	result, err := Parse(data, Current)
	require.NoError(t, err)
	assert.Empty(t, result.Schedules)
}

func TestDetectVersionRejectsUnknownPrefix(t *testing.T) {
	_, err := DetectVersion([]byte(`<railml version="9.0"></railml>`))
	assert.Error(t, err)
}

func TestToGraphAndFromGraphRoundTrip(t *testing.T) {
	n := sampleNetwork()
	g, err := ToGraph(n)
	require.NoError(t, err)

	out := FromGraph(g, []string{"A", "B"})
	require.Len(t, out.Nodes, 2)
	require.Len(t, out.Edges, 1)
	assert.Equal(t, n.Edges[0].ID, out.Edges[0].ID)
}
