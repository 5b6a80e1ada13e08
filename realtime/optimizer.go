package realtime

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/railwayai/railwayai/railway"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Optimizer tracks live train positions and predicts near-term
// conflicts, generating schedule adjustments to avoid them. Safe for
// concurrent use: one RWMutex guards the whole object, matching the
// rest of this codebase's mutex-per-stateful-object convention.
type Optimizer struct {
	mu     sync.RWMutex
	graph  *railway.Graph
	config Config
	clock  clockwork.Clock
	logger log.Logger

	positions   map[string]TrainPosition
	delays      map[string]TrainDelay
	predictions []PredictedConflict
	stats       Stats

	onPositionUpdate     []func(TrainPosition)
	onConflictPredicted  []func(PredictedConflict)
	onAdjustmentGenerated []func(Adjustment)
}

// New builds an Optimizer with the real wall clock.
func New(g *railway.Graph, cfg Config) *Optimizer {
	return NewWithClock(g, cfg, clockwork.NewRealClock())
}

// NewWithClock builds an Optimizer with an injected clock, for
// deterministic tests.
func NewWithClock(g *railway.Graph, cfg Config, clock clockwork.Clock) *Optimizer {
	return &Optimizer{
		graph:     g,
		config:    cfg,
		clock:     clock,
		logger:    log.Root(),
		positions: make(map[string]TrainPosition),
		delays:    make(map[string]TrainDelay),
	}
}

// SetLogger rebinds the optimizer's logger.
func (o *Optimizer) SetLogger(parent log.Logger) {
	o.logger = parent.New("module", "realtime")
}

// OnPositionUpdate registers a callback invoked synchronously from
// UpdatePosition.
func (o *Optimizer) OnPositionUpdate(f func(TrainPosition)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onPositionUpdate = append(o.onPositionUpdate, f)
}

// OnConflictPredicted registers a callback invoked synchronously as
// PredictConflicts finds each conflict.
func (o *Optimizer) OnConflictPredicted(f func(PredictedConflict)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onConflictPredicted = append(o.onConflictPredicted, f)
}

// OnAdjustmentGenerated registers a callback invoked synchronously as
// GenerateAdjustments emits each adjustment.
func (o *Optimizer) OnAdjustmentGenerated(f func(Adjustment)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onAdjustmentGenerated = append(o.onAdjustmentGenerated, f)
}

// UpdatePosition records a train's current position.
func (o *Optimizer) UpdatePosition(p TrainPosition) {
	o.mu.Lock()
	o.positions[p.TrainID] = p
	o.stats.TotalUpdates++
	o.stats.LastUpdate = o.clock.Now()
	callbacks := append([]func(TrainPosition){}, o.onPositionUpdate...)
	o.mu.Unlock()

	for _, cb := range callbacks {
		cb(p)
	}
}

// UpdatePositions records multiple positions in order.
func (o *Optimizer) UpdatePositions(positions []TrainPosition) {
	for _, p := range positions {
		o.UpdatePosition(p)
	}
}

// ReportDelay records a train's delay state.
func (o *Optimizer) ReportDelay(d TrainDelay) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delays[d.TrainID] = d
}

// Position returns a train's last-reported position.
func (o *Optimizer) Position(trainID string) (TrainPosition, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.positions[trainID]
	return p, ok
}

// Delay returns a train's last-reported delay.
func (o *Optimizer) Delay(trainID string) (TrainDelay, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	d, ok := o.delays[trainID]
	return d, ok
}

// Stats returns the running statistics.
func (o *Optimizer) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stats
}

// PredictConflicts steps a simulated clock in 10-second increments up
// to the configured horizon for every unordered pair of tracked trains,
// reporting at most one PredictedConflict per pair (the earliest step
// meeting the confidence threshold).
func (o *Optimizer) PredictConflicts() []PredictedConflict {
	o.mu.Lock()
	ids := make([]string, 0, len(o.positions))
	for id := range o.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	now := o.clock.Now()
	horizon := o.config.PredictionHorizon
	threshold := o.config.ConflictThreshold
	positions := make(map[string]TrainPosition, len(o.positions))
	for k, v := range o.positions {
		positions[k] = v
	}
	callbacks := append([]func(PredictedConflict){}, o.onConflictPredicted...)
	o.mu.Unlock()

	var found []PredictedConflict
	numSteps := int(horizon / predictionStep)

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pos1, pos2 := positions[ids[i]], positions[ids[j]]
			for step := 1; step <= numSteps; step++ {
				checkTime := now.Add(time.Duration(step) * predictionStep)
				if !willConflict(pos1, pos2, checkTime) {
					continue
				}
				confidence := conflictConfidence(pos1, pos2)
				if confidence < threshold {
					continue
				}
				pc := PredictedConflict{
					Train1ID:      ids[i],
					Train2ID:      ids[j],
					ConflictNode:  pos1.NextNode,
					PredictedTime: checkTime,
					Confidence:    confidence,
					Train1Pos:     pos1,
					Train2Pos:     pos2,
				}
				found = append(found, pc)
				for _, cb := range callbacks {
					cb(pc)
				}
				break
			}
		}
	}

	o.mu.Lock()
	o.predictions = found
	o.stats.ConflictsPredicted += len(found)
	o.mu.Unlock()
	o.logger.Debug("predict_conflicts complete", "tracked", len(ids), "found", len(found))
	return found
}

// willConflict reports whether two trains headed to the same next node
// are predicted to occupy nearly the same progress fraction at the
// given check time.
func willConflict(pos1, pos2 TrainPosition, checkTime time.Time) bool {
	if pos1.NextNode != pos2.NextNode || pos1.NextNode == "" {
		return false
	}
	pred1 := predictProgress(pos1, checkTime)
	pred2 := predictProgress(pos2, checkTime)
	return math.Abs(pred1-pred2) < 0.1
}

// predictProgress linearly extrapolates progress toward NextNode. 50km
// is the same fixed normalization distance the originating scheduler
// used when it lacked real segment lengths at this layer.
func predictProgress(pos TrainPosition, checkTime time.Time) float64 {
	hours := checkTime.Sub(pos.Timestamp).Hours()
	distanceKm := pos.SpeedKmh * hours
	return pos.Progress + distanceKm/50.0
}

// conflictConfidence starts at 0.7, scales down by 0.8 when the trains
// are far apart (different current AND next nodes), and scales up by
// 1.1 when both speeds are known positive, clamped to [0, 1].
func conflictConfidence(pos1, pos2 TrainPosition) float64 {
	confidence := 0.7
	if pos1.CurrentNode != pos2.CurrentNode && pos1.NextNode != pos2.NextNode {
		confidence *= 0.8
	}
	if pos1.SpeedKmh > 0 && pos2.SpeedKmh > 0 {
		confidence *= 1.1
	}
	if confidence > 1 {
		return 1
	}
	if confidence < 0 {
		return 0
	}
	return confidence
}

// GenerateAdjustments proposes, per predicted conflict, the candidate
// among {speed-change, hold-at-station, route-change (if enabled)} with
// the highest estimated delay reduction whose confidence exceeds 0.5,
// up to MaxAdjustmentsPerCycle total.
func (o *Optimizer) GenerateAdjustments(conflicts []PredictedConflict) []Adjustment {
	o.mu.RLock()
	cfg := o.config
	positions := make(map[string]TrainPosition, len(o.positions))
	for k, v := range o.positions {
		positions[k] = v
	}
	callbacks := append([]func(Adjustment){}, o.onAdjustmentGenerated...)
	o.mu.RUnlock()

	var adjustments []Adjustment
	for _, c := range conflicts {
		var candidates []Adjustment
		if cfg.EnableSpeedAdjustments {
			candidates = append(candidates,
				speedAdjustment(positions, c.Train1ID, c),
				speedAdjustment(positions, c.Train2ID, c))
		}
		candidates = append(candidates,
			holdAdjustment(c.Train1ID, c),
			holdAdjustment(c.Train2ID, c))
		if cfg.EnableRouteChanges {
			candidates = append(candidates,
				routeAdjustment(c.Train1ID),
				routeAdjustment(c.Train2ID))
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].EstimatedDelayReduction > candidates[j].EstimatedDelayReduction
		})

		if len(candidates) > 0 && candidates[0].Confidence > 0.5 {
			adjustments = append(adjustments, candidates[0])
			for _, cb := range callbacks {
				cb(candidates[0])
			}
		}
		if len(adjustments) >= cfg.MaxAdjustmentsPerCycle {
			break
		}
	}
	return adjustments
}

// Optimize runs one full cycle: predict, then generate adjustments.
func (o *Optimizer) Optimize() []Adjustment {
	conflicts := o.PredictConflicts()
	return o.GenerateAdjustments(conflicts)
}

// ApplyAdjustment records statistics for an applied adjustment.
// Mutating the actual schedule is the caller's responsibility via
// resolver/route, matching the layering the planner already enforces.
func (o *Optimizer) ApplyAdjustment(a Adjustment) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stats.AdjustmentsApplied++
	n := o.stats.AdjustmentsApplied
	o.stats.AvgDelayReduction = (o.stats.AvgDelayReduction*float64(n-1) + a.EstimatedDelayReduction) / float64(n)
}

func speedAdjustment(positions map[string]TrainPosition, trainID string, c PredictedConflict) Adjustment {
	pos, ok := positions[trainID]
	if !ok {
		return Adjustment{TrainID: trainID, Type: SpeedChange, Confidence: 0}
	}
	return Adjustment{
		TrainID:                 trainID,
		Type:                    SpeedChange,
		NewSpeedKmh:             pos.SpeedKmh * 0.85,
		EstimatedDelayReduction: 3.0,
		Confidence:              0.75,
		Justification:           fmt.Sprintf("reduce speed to avoid predicted conflict at %s", c.ConflictNode),
	}
}

func holdAdjustment(trainID string, c PredictedConflict) Adjustment {
	other := c.Train2ID
	if trainID == c.Train2ID {
		other = c.Train1ID
	}
	return Adjustment{
		TrainID:                 trainID,
		Type:                    HoldAtStation,
		HoldMinutes:             5.0,
		EstimatedDelayReduction: 2.0,
		Confidence:              0.80,
		Justification:           fmt.Sprintf("hold at station to avoid conflict with %s", other),
	}
}

func routeAdjustment(trainID string) Adjustment {
	return Adjustment{
		TrainID:                 trainID,
		Type:                    RouteChange,
		EstimatedDelayReduction: 5.0,
		Confidence:              0.65,
		Justification:           "alternative route available to avoid conflict",
	}
}
