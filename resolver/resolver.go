package resolver

import (
	"fmt"
	"sort"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Resolver applies the strategy decision table to conflicts and mutates
// the relevant schedules in place, one pass per ResolveAll call.
type Resolver struct {
	graph  *railway.Graph
	config Config
	stats  Stats
	logger log.Logger
}

// New builds a Resolver over the given graph with the given config.
func New(g *railway.Graph, cfg Config) *Resolver {
	return &Resolver{graph: g, config: cfg, logger: log.Root()}
}

// SetLogger rebinds the resolver's logger.
func (r *Resolver) SetLogger(parent log.Logger) {
	r.logger = parent.New("module", "resolver")
}

// Stats returns the running statistics.
func (r *Resolver) Stats() Stats { return r.stats }

// ResolveAll processes conflicts in strictly decreasing severity order
// (ties by lexicographic train-id pair), mutating schedules and
// returning the aggregate outcome. Exactly one pass: conflicts that
// reappear after resolution are left for a future call.
func (r *Resolver) ResolveAll(schedules []*schedule.TrainSchedule, trains []schedule.Train, conflicts []conflict.Conflict) BatchResult {
	sorted := make([]conflict.Conflict, len(conflicts))
	copy(sorted, conflicts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity > sorted[j].Severity
		}
		return pairLexKey(sorted[i]) < pairLexKey(sorted[j])
	})

	pt := newPriorityTracker(schedules, trains)

	var batch BatchResult
	batch.Success = true
	batch.Attempted = len(sorted)
	qualitySum := 0.0

	for _, c := range sorted {
		r.stats.TotalResolutions++
		res := r.resolveSingle(c, schedules, pt)
		if res.Success {
			batch.Resolved++
			r.stats.SuccessfulResolutions++
			batch.TotalDelaySec += res.TotalDelaySec
			batch.ModifiedTrains = append(batch.ModifiedTrains, res.ModifiedTrains...)
			qualitySum += res.QualityScore
		} else {
			batch.Success = false
		}
	}
	if batch.Resolved > 0 {
		batch.QualityScore = qualitySum / float64(batch.Resolved)
	}
	batch.Description = fmt.Sprintf("resolved %d of %d conflicts, total delay %.0fs", batch.Resolved, batch.Attempted, batch.TotalDelaySec)
	r.logger.Info("resolve_all complete", "attempted", batch.Attempted, "resolved", batch.Resolved, "quality", batch.QualityScore)
	return batch
}

func pairLexKey(c conflict.Conflict) string {
	a, b := c.Train1, c.Train2
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (r *Resolver) resolveSingle(c conflict.Conflict, schedules []*schedule.TrainSchedule, pt *priorityTracker) Result {
	switch c.Kind {
	case conflict.SectionOverlap:
		e, ok := r.graph.EdgeBetween(c.SectionFrom, c.SectionTo)
		if ok && e.Kind == railway.Double {
			res := r.resolveDoubleTrack(c, schedules, pt)
			if res.Success {
				r.stats.DoubleTrackResolutions++
			}
			return res
		}
		res := r.resolveSingleTrack(c, schedules, pt)
		if res.Success {
			r.stats.SingleTrackResolutions++
		}
		return res

	case conflict.HeadOn:
		res := r.resolveSingleTrack(c, schedules, pt)
		if res.Success {
			r.stats.SingleTrackResolutions++
		}
		return res

	case conflict.PlatformConflict:
		res := r.resolveStationConflict(c, schedules, pt)
		if res.Success {
			r.stats.StationResolutions++
		}
		return res

	case conflict.TimingViolation:
		return r.resolveTimingViolation(c, schedules)

	default:
		return Result{Description: fmt.Sprintf("unknown conflict kind %q", c.Kind)}
	}
}

func (r *Resolver) resolveDoubleTrack(c conflict.Conflict, schedules []*schedule.TrainSchedule, pt *priorityTracker) Result {
	t1 := findSchedule(c.Train1, schedules)
	t2 := findSchedule(c.Train2, schedules)
	if t1 == nil || t2 == nil {
		return Result{Description: "could not find train schedules"}
	}

	required := r.config.MinHeadwaySeconds
	p1, p2 := pt.priority(c.Train1), pt.priority(c.Train2)

	var res Result
	res.Strategy = AdjustSpeed
	switch {
	case p1 > p2:
		delay := required + 30
		applyDelay(t2, delay)
		pt.recordDelay(c.Train2, delay)
		res.Success = true
		res.TotalDelaySec = delay
		res.ModifiedTrains = []string{c.Train2}
		res.Description = fmt.Sprintf("double track: delayed %s by %.0fs to maintain headway", c.Train2, delay)
	case p2 > p1:
		delay := required + 30
		applyDelay(t1, delay)
		pt.recordDelay(c.Train1, delay)
		res.Success = true
		res.TotalDelaySec = delay
		res.ModifiedTrains = []string{c.Train1}
		res.Description = fmt.Sprintf("double track: delayed %s by %.0fs to maintain headway", c.Train1, delay)
	default:
		d1, d2 := required/2, required/2
		applyDelay(t1, d1)
		applyDelay(t2, d2)
		pt.recordDelay(c.Train1, d1)
		pt.recordDelay(c.Train2, d2)
		res.Success = true
		res.TotalDelaySec = d1 + d2
		res.ModifiedTrains = []string{c.Train1, c.Train2}
		res.Description = fmt.Sprintf("double track: distributed delay between %s and %s (%.0fs, %.0fs)", c.Train1, c.Train2, d1, d2)
	}
	res.QualityScore = qualityScore(r.config, res.TotalDelaySec, len(res.ModifiedTrains))
	return res
}

func (r *Resolver) resolveSingleTrack(c conflict.Conflict, schedules []*schedule.TrainSchedule, pt *priorityTracker) Result {
	t1 := findSchedule(c.Train1, schedules)
	t2 := findSchedule(c.Train2, schedules)
	if t1 == nil || t2 == nil {
		return Result{Description: "could not find train schedules"}
	}

	var res Result
	if r.config.AllowSingleTrackMeets {
		if _, ok := findMeetPoint(r.graph, t1, t2); ok {
			res.Strategy = AddMeetPoint
			loser := pt.lowerPriority(c.Train1, c.Train2)
			delay := r.config.SingleTrackMeetBuffer
			loserSchedule := t1
			if loser == c.Train2 {
				loserSchedule = t2
			}
			applyDelay(loserSchedule, delay)
			pt.recordDelay(loser, delay)
			res.Success = true
			res.TotalDelaySec = delay
			res.ModifiedTrains = []string{loser}
			res.Description = fmt.Sprintf("single track: %s waits (delay %.0fs)", loser, delay)
			res.QualityScore = qualityScore(r.config, res.TotalDelaySec, len(res.ModifiedTrains))
			return res
		}
	}

	// No meet point (or meets disallowed): priority-based delay to clear
	// the section, twice the meet buffer per the decision table.
	res.Strategy = PriorityBased
	loser := pt.lowerPriority(c.Train1, c.Train2)
	delay := 2 * r.config.SingleTrackMeetBuffer
	loserSchedule := t1
	if loser == c.Train2 {
		loserSchedule = t2
	}
	applyDelay(loserSchedule, delay)
	pt.recordDelay(loser, delay)
	res.Success = true
	res.TotalDelaySec = delay
	res.ModifiedTrains = []string{loser}
	res.Description = fmt.Sprintf("single track (no meeting point): delayed %s to clear section", loser)
	res.QualityScore = qualityScore(r.config, res.TotalDelaySec, len(res.ModifiedTrains))
	return res
}

func (r *Resolver) resolveStationConflict(c conflict.Conflict, schedules []*schedule.TrainSchedule, pt *priorityTracker) Result {
	t1 := findSchedule(c.Train1, schedules)
	t2 := findSchedule(c.Train2, schedules)
	if t1 == nil || t2 == nil {
		return Result{Description: "could not find train schedules"}
	}

	if r.config.AllowPlatformReassignment {
		loser := pt.lowerPriority(c.Train1, c.Train2)
		loserSchedule := t2
		if loser == c.Train1 {
			loserSchedule = t1
		}
		for _, st := range loserSchedule.Stops {
			if st.NodeID != c.Location {
				continue
			}
			if alt, ok := findAlternativePlatform(r.graph, c.Location, st.Arrival, st.Departure, c.Platform, schedules, r.config.PlatformBuffer); ok {
				if changePlatform(loserSchedule, c.Location, alt) {
					r.stats.PlatformsChanged++
					return Result{
						Success:        true,
						Strategy:       ChangePlatform,
						Description:    fmt.Sprintf("station conflict: moved %s to platform %d at %s", loser, alt, c.Location),
						ModifiedTrains: []string{loser},
						TotalDelaySec:  0,
						QualityScore:   0.9,
					}
				}
			}
			break
		}
	}

	loser := pt.lowerPriority(c.Train1, c.Train2)
	loserSchedule := t1
	if loser == c.Train2 {
		loserSchedule = t2
	}
	delay := r.config.PlatformBuffer + r.config.StationDwellBuffer
	applyDelay(loserSchedule, delay)
	pt.recordDelay(loser, delay)
	r.stats.DelaysApplied++
	res := Result{
		Success:        true,
		Strategy:       DelayTrain,
		Description:    fmt.Sprintf("station conflict: delayed %s by %.0fs at %s", loser, delay, c.Location),
		ModifiedTrains: []string{loser},
		TotalDelaySec:  delay,
	}
	res.QualityScore = qualityScore(r.config, res.TotalDelaySec, len(res.ModifiedTrains))
	return res
}

func (r *Resolver) resolveTimingViolation(c conflict.Conflict, schedules []*schedule.TrainSchedule) Result {
	t := findSchedule(c.Train1, schedules)
	if t == nil {
		return Result{Description: "could not find train schedule"}
	}
	delay := r.config.MinHeadwaySeconds
	applyDelay(t, delay)
	r.stats.DelaysApplied++
	return Result{
		Success:        true,
		Strategy:       DelayTrain,
		Description:    "fixed timing violation with minimal delay",
		ModifiedTrains: []string{c.Train1},
		TotalDelaySec:  delay,
		QualityScore:   0.85,
	}
}
