package resolver

import (
	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
)

// Planner is a batch detect -> resolve -> re-detect facade distinct from
// the live realtime.Optimizer: it runs the detector once, resolves
// everything found in a single ResolveAll pass, then re-detects to
// report what remains (never resolving the remainder itself, per the
// one-pass-per-call contract).
type Planner struct {
	Detector *conflict.Detector
	Resolver *Resolver
}

// NewPlanner wires a detector and resolver sharing the same graph.
func NewPlanner(g *railway.Graph, detectCfg conflict.Config, resolveCfg Config) *Planner {
	return &Planner{
		Detector: conflict.New(g, detectCfg),
		Resolver: New(g, resolveCfg),
	}
}

// PlanResult reports what a single planning pass found and fixed.
type PlanResult struct {
	InitialConflicts   []conflict.Conflict
	Batch              BatchResult
	RemainingConflicts []conflict.Conflict
}

// Plan runs one detect -> resolve -> re-detect cycle over the given
// schedules, mutating them in place.
func (p *Planner) Plan(schedules []*schedule.TrainSchedule, trains []schedule.Train) PlanResult {
	initial := p.Detector.DetectAll(schedules)
	batch := p.Resolver.ResolveAll(schedules, trains, initial)
	remaining := p.Detector.DetectAll(schedules)
	return PlanResult{InitialConflicts: initial, Batch: batch, RemainingConflicts: remaining}
}
