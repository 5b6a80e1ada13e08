package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railerr"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/resolver"
	"github.com/railwayai/railwayai/schedule"
)

// PostgresStore is the Store implementation backed by jackc/pgx/v5,
// following the pool-wrapping repository shape the pack's ride-pooling
// repository uses (struct wraps *pgxpool.Pool, one method per query,
// context-first, errors wrapped with the failing operation).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, runs pending migrations, and returns a ready
// PostgresStore. It goes through database/sql via pgx's stdlib adapter
// only for the migration step, since goose operates on *sql.DB; all
// subsequent queries go through the native pgxpool.Pool.
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	if err := Migrate(ctx, sqlDB); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// OpenWithoutMigrating is Open without running goose, for tests that
// manage their own migration lifecycle or point at an already-migrated
// database.
func OpenWithoutMigrating(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

// SaveNetwork persists a graph's nodes and edges under one transaction,
// using Begin/Commit/Rollback with a defer-based auto-rollback on any
// error path, matching pgx's own idiom.
func (s *PostgresStore) SaveNetwork(ctx context.Context, name string, g *railway.Graph, nodeIDs []string) (uuid.UUID, error) {
	networkID := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: begin save network: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO networks (id, name) VALUES ($1, $2)`, networkID, name); err != nil {
		return uuid.Nil, fmt.Errorf("store: insert network: %w", err)
	}

	seenEdges := make(map[string]bool)
	for _, id := range nodeIDs {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO nodes (network_id, node_id, name, kind, lat, lon, capacity, platform_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			networkID, n.ID, n.Name, string(n.Kind), n.Coordinates.Lat, n.Coordinates.Lon, n.Capacity, n.PlatformCount)
		if err != nil {
			return uuid.Nil, fmt.Errorf("store: insert node %s: %w", n.ID, err)
		}

		for _, nbr := range g.GetNeighbors(id) {
			e, ok := g.EdgeBetween(id, nbr)
			if !ok || seenEdges[e.ID] {
				continue
			}
			seenEdges[e.ID] = true
			_, err := tx.Exec(ctx, `
				INSERT INTO edges (network_id, edge_id, from_node, to_node, length_km, kind, max_speed_kmh, capacity, bidirectional)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				networkID, e.ID, e.From, e.To, e.LengthKm, string(e.Kind), e.MaxSpeedKmh, e.Capacity, e.Bidirectional)
			if err != nil {
				return uuid.Nil, fmt.Errorf("store: insert edge %s: %w", e.ID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("store: commit save network: %w", err)
	}
	return networkID, nil
}

// LoadNetwork reconstructs a railway.Graph from the networks/nodes/edges
// tables for one network id.
func (s *PostgresStore) LoadNetwork(ctx context.Context, networkID uuid.UUID) (*railway.Graph, error) {
	g := railway.New()

	rows, err := s.pool.Query(ctx, `
		SELECT node_id, name, kind, lat, lon, capacity, platform_count
		FROM nodes WHERE network_id = $1`, networkID)
	if err != nil {
		return nil, fmt.Errorf("store: query nodes: %w", err)
	}
	for rows.Next() {
		var n railway.Node
		var kind string
		if err := rows.Scan(&n.ID, &n.Name, &kind, &n.Coordinates.Lat, &n.Coordinates.Lon, &n.Capacity, &n.PlatformCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan node: %w", err)
		}
		n.Kind = railway.NodeKind(kind)
		if err := g.AddNode(n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: rebuild node %s: %w", n.ID, err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate nodes: %w", err)
	}

	erows, err := s.pool.Query(ctx, `
		SELECT edge_id, from_node, to_node, length_km, kind, max_speed_kmh, capacity, bidirectional
		FROM edges WHERE network_id = $1`, networkID)
	if err != nil {
		return nil, fmt.Errorf("store: query edges: %w", err)
	}
	defer erows.Close()
	for erows.Next() {
		var e railway.Edge
		var kind string
		if err := erows.Scan(&e.ID, &e.From, &e.To, &e.LengthKm, &kind, &e.MaxSpeedKmh, &e.Capacity, &e.Bidirectional); err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		e.Kind = railway.TrackKind(kind)
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("store: rebuild edge %s: %w", e.ID, err)
		}
	}
	if err := erows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate edges: %w", err)
	}

	return g, nil
}

// SaveSchedule persists a train and its schedule, upserting the train
// row since the same train can run multiple schedules.
func (s *PostgresStore) SaveSchedule(ctx context.Context, networkID uuid.UUID, t schedule.Train, sc schedule.TrainSchedule) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: begin save schedule: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO trains (train_id, name, kind, max_speed_kmh, accel_ms2, decel_ms2)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (train_id) DO UPDATE SET
			name = EXCLUDED.name, kind = EXCLUDED.kind, max_speed_kmh = EXCLUDED.max_speed_kmh,
			accel_ms2 = EXCLUDED.accel_ms2, decel_ms2 = EXCLUDED.decel_ms2`,
		t.ID, t.Name, string(t.Kind), t.MaxSpeedKmh, t.AccelMs2, t.DecelMs2)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: upsert train %s: %w", t.ID, err)
	}

	rowID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO schedules (id, network_id, schedule_id, train_id) VALUES ($1, $2, $3, $4)`,
		rowID, networkID, sc.ID, sc.TrainID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: insert schedule %s: %w", sc.ID, err)
	}

	for i, st := range sc.Stops {
		_, err := tx.Exec(ctx, `
			INSERT INTO stops (schedule_row_id, seq, node_id, arrival, departure, is_stop, platform)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rowID, i, st.NodeID, st.Arrival, st.Departure, st.IsStop, st.Platform)
		if err != nil {
			return uuid.Nil, fmt.Errorf("store: insert stop %d of %s: %w", i, sc.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("store: commit save schedule: %w", err)
	}
	return rowID, nil
}

// LoadSchedules returns every schedule and its train recorded for a
// network, ordered by stop sequence within each schedule.
func (s *PostgresStore) LoadSchedules(ctx context.Context, networkID uuid.UUID) ([]schedule.TrainSchedule, []schedule.Train, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.schedule_id, s.train_id, t.name, t.kind, t.max_speed_kmh, t.accel_ms2, t.decel_ms2
		FROM schedules s JOIN trains t ON t.train_id = s.train_id
		WHERE s.network_id = $1`, networkID)
	if err != nil {
		return nil, nil, fmt.Errorf("store: query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.TrainSchedule
	var trains []schedule.Train
	var rowIDs []uuid.UUID
	for rows.Next() {
		var rowID uuid.UUID
		var sc schedule.TrainSchedule
		var t schedule.Train
		var kind string
		if err := rows.Scan(&rowID, &sc.ID, &sc.TrainID, &t.Name, &kind, &t.MaxSpeedKmh, &t.AccelMs2, &t.DecelMs2); err != nil {
			return nil, nil, fmt.Errorf("store: scan schedule: %w", err)
		}
		t.ID = sc.TrainID
		t.Kind = schedule.TrainKind(kind)
		schedules = append(schedules, sc)
		trains = append(trains, t)
		rowIDs = append(rowIDs, rowID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: iterate schedules: %w", err)
	}

	for i, rowID := range rowIDs {
		stops, err := s.loadStops(ctx, rowID)
		if err != nil {
			return nil, nil, err
		}
		schedules[i].Stops = stops
	}
	return schedules, trains, nil
}

func (s *PostgresStore) loadStops(ctx context.Context, rowID uuid.UUID) ([]schedule.Stop, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT node_id, arrival, departure, is_stop, platform
		FROM stops WHERE schedule_row_id = $1 ORDER BY seq ASC`, rowID)
	if err != nil {
		return nil, fmt.Errorf("store: query stops: %w", err)
	}
	defer rows.Close()

	var stops []schedule.Stop
	for rows.Next() {
		var st schedule.Stop
		if err := rows.Scan(&st.NodeID, &st.Arrival, &st.Departure, &st.IsStop, &st.Platform); err != nil {
			return nil, fmt.Errorf("store: scan stop: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// RecordConflict persists one detected conflict.
func (s *PostgresStore) RecordConflict(ctx context.Context, networkID uuid.UUID, c conflict.Conflict) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conflicts (id, network_id, kind, train1_id, train2_id, location, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, networkID, string(c.Kind), c.Train1, c.Train2, c.Location, c.Severity)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: insert conflict: %w", err)
	}
	return id, nil
}

// RecordResolution persists one resolver.Result against the conflict it
// resolved.
func (s *PostgresStore) RecordResolution(ctx context.Context, conflictID uuid.UUID, r resolver.Result) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO resolutions (id, conflict_id, strategy, description, total_delay_sec, quality_score)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, conflictID, string(r.Strategy), r.Description, r.TotalDelaySec, r.QualityScore)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: insert resolution: %w", err)
	}
	return id, nil
}

// RecordMetric appends a durable metric sample, for queryable history
// distinct from telemetry's live Prometheus counters.
func (s *PostgresStore) RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) error {
	b, err := json.Marshal(labels)
	if err != nil {
		return railerr.Wrap(railerr.InvalidArgument, "store.RecordMetric", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO metrics (name, value, labels) VALUES ($1, $2, $3)`, name, value, b)
	if err != nil {
		return fmt.Errorf("store: insert metric %s: %w", name, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
