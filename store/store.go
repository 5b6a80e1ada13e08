// Package store is the persistence layer: nine relational tables
// (networks, nodes, edges, schedules, trains, stops, conflicts,
// resolutions, metrics) behind the Store interface, with one concrete
// implementation on jackc/pgx/v5. Core packages (railway, schedule,
// conflict, resolver, route, realtime) never import this package —
// it imports them, to know what shape to serialize, the same
// direction of dependency xentoshi-lake's repository layer takes on
// its own domain models.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/resolver"
	"github.com/railwayai/railwayai/schedule"
)

// Store is the persistence boundary consumed by server and cmd. One
// PostgresStore implementation is provided; the interface exists so a
// different backing engine is a one-file swap.
type Store interface {
	SaveNetwork(ctx context.Context, name string, g *railway.Graph, nodeIDs []string) (uuid.UUID, error)
	LoadNetwork(ctx context.Context, networkID uuid.UUID) (*railway.Graph, error)

	SaveSchedule(ctx context.Context, networkID uuid.UUID, t schedule.Train, s schedule.TrainSchedule) (uuid.UUID, error)
	LoadSchedules(ctx context.Context, networkID uuid.UUID) ([]schedule.TrainSchedule, []schedule.Train, error)

	RecordConflict(ctx context.Context, networkID uuid.UUID, c conflict.Conflict) (uuid.UUID, error)
	RecordResolution(ctx context.Context, conflictID uuid.UUID, r resolver.Result) (uuid.UUID, error)

	RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) error

	Close()
}

// NetworkRow mirrors the networks table.
type NetworkRow struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// NodeRow mirrors the nodes table.
type NodeRow struct {
	NetworkID     uuid.UUID
	NodeID        string
	Name          string
	Kind          string
	Lat, Lon      float64
	Capacity      int
	PlatformCount int
}

// EdgeRow mirrors the edges table.
type EdgeRow struct {
	NetworkID     uuid.UUID
	EdgeID        string
	FromNode      string
	ToNode        string
	LengthKm      float64
	Kind          string
	MaxSpeedKmh   float64
	Capacity      int
	Bidirectional bool
}

// ScheduleRow mirrors the schedules table.
type ScheduleRow struct {
	ID         uuid.UUID
	NetworkID  uuid.UUID
	ScheduleID string
	TrainID    string
}

// TrainRow mirrors the trains table.
type TrainRow struct {
	TrainID     string
	Name        string
	Kind        string
	MaxSpeedKmh float64
	AccelMs2    float64
	DecelMs2    float64
}

// StopRow mirrors the stops table.
type StopRow struct {
	ScheduleRowID uuid.UUID
	Seq           int
	NodeID        string
	Arrival       time.Time
	Departure     time.Time
	IsStop        bool
	Platform      int
}

// ConflictRow mirrors the conflicts table.
type ConflictRow struct {
	ID         uuid.UUID
	NetworkID  uuid.UUID
	Kind       string
	Train1     string
	Train2     string
	Location   string
	Severity   float64
	DetectedAt time.Time
}

// ResolutionRow mirrors the resolutions table.
type ResolutionRow struct {
	ID           uuid.UUID
	ConflictID   uuid.UUID
	Strategy     string
	Description  string
	TotalDelaySec float64
	QualityScore float64
	ResolvedAt   time.Time
}

// MetricRow mirrors the metrics table (a generic time-series fallback
// for values not already covered by telemetry's Prometheus counters —
// used for durable, queryable history rather than live scraping).
type MetricRow struct {
	Name      string
	Value     float64
	Labels    map[string]string
	RecordedAt time.Time
}
