package server

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/resolver"
	"github.com/railwayai/railwayai/route"
	"github.com/railwayai/railwayai/schedule"
)

// addNode and addEdge mutate the shared graph under the write lock,
// matching the one-graph-per-App invariant New sets up.
func (a *App) addNode(n railway.Node) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.graph.AddNode(n); err != nil {
		return err
	}
	a.nodeIDs = append(a.nodeIDs, n.ID)
	return nil
}

func (a *App) addEdge(e railway.Edge) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graph.AddEdge(e)
}

func (a *App) networkStats() railway.NetworkStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graph.NetworkStats()
}

func (a *App) listNodeIDs() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.nodeIDs))
	copy(out, a.nodeIDs)
	return out
}

// putSchedule registers or replaces a train and its schedule.
func (a *App) putSchedule(t schedule.Train, s schedule.TrainSchedule) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trains[t.ID] = t
	sc := s
	a.schedules[s.ID] = &sc
}

func (a *App) removeSchedule(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.schedules[id]; !ok {
		return false
	}
	delete(a.schedules, id)
	return true
}

func (a *App) listSchedules() []*schedule.TrainSchedule {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*schedule.TrainSchedule, 0, len(a.schedules))
	for _, s := range a.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (a *App) listTrains() []schedule.Train {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]schedule.Train, 0, len(a.trains))
	for _, t := range a.trains {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (a *App) trainByID(id string) (schedule.Train, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.trains[id]
	return t, ok
}

// detectConflicts runs the detector once over the current schedule set
// and records every finding in the durable event feed.
func (a *App) detectConflicts() []conflict.Conflict {
	schedules := a.listSchedules()
	conflicts := a.detector.DetectAll(schedules)
	for _, c := range conflicts {
		recordConflictEvent(a.events, c)
		a.hub.push("conflict", c)
	}
	if a.metrics != nil {
		a.metrics.OpenConflicts.Set(float64(len(conflicts)))
		for _, c := range conflicts {
			a.metrics.ConflictsDetectedTotal.WithLabelValues(string(c.Kind)).Inc()
		}
	}
	return conflicts
}

// resolveAll runs the resolver's batch pass over the current schedule
// set for exactly the conflicts given, mutating schedules in place.
func (a *App) resolveAll(conflicts []conflict.Conflict) resolver.BatchResult {
	schedules := a.listSchedules()
	trains := a.listTrains()
	batch := a.resolver.ResolveAll(schedules, trains, conflicts)
	if a.metrics != nil {
		a.metrics.ConflictsResolvedTotal.WithLabelValues("batch").Add(float64(batch.Resolved))
	}
	return batch
}

// planAll runs one detect -> resolve -> re-detect pass via the planner,
// persisting every initial conflict and the batch outcome when a store
// and a previously-saved network are both available.
func (a *App) planAll(ctx context.Context) resolver.PlanResult {
	schedules := a.listSchedules()
	trains := a.listTrains()
	result := a.planner.Plan(schedules, trains)

	networkID, hasNetwork := a.currentNetworkID()
	for _, c := range result.InitialConflicts {
		recordConflictEvent(a.events, c)
		if a.store != nil && hasNetwork {
			if conflictID, err := a.persistConflict(ctx, networkID, c); err == nil {
				_, _ = a.persistResolution(ctx, conflictID, resolver.Result{
					Success:     result.Batch.Success,
					Description: result.Batch.Description,
				})
			} else {
				a.logger.Warn("failed to persist conflict", "error", err)
			}
		}
	}
	recordResolutionEvent(a.events, resolver.Result{
		Success:     result.Batch.Success,
		Description: result.Batch.Description,
	})
	if a.metrics != nil {
		a.metrics.OpenConflicts.Set(float64(len(result.RemainingConflicts)))
	}
	return result
}

func (a *App) findAlternatives(start, end string, excludeEdges []string, conflicts []conflict.Conflict) []route.Alternative {
	alts := a.router.FindAlternatives(start, end, excludeEdges, conflicts)
	if a.metrics != nil {
		a.metrics.RouteAlternativesFound.Observe(float64(len(alts)))
	}
	return alts
}

func (a *App) persistConflict(ctx context.Context, networkID uuid.UUID, c conflict.Conflict) (uuid.UUID, error) {
	if a.store == nil {
		return uuid.UUID{}, errStoreUnavailable
	}
	return a.store.RecordConflict(ctx, networkID, c)
}

func (a *App) persistResolution(ctx context.Context, conflictID uuid.UUID, r resolver.Result) (uuid.UUID, error) {
	if a.store == nil {
		return uuid.UUID{}, errStoreUnavailable
	}
	return a.store.RecordResolution(ctx, conflictID, r)
}
