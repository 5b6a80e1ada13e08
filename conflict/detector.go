package conflict

import (
	"fmt"
	"time"

	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Detector enumerates pairwise schedule interactions over a shared
// railway.Graph and classifies/rates them. Stateless across calls except
// for the running Stats (spec §4.4: "statistics maintained across
// calls").
type Detector struct {
	graph  *railway.Graph
	config Config
	stats  Stats
	logger log.Logger
}

// New builds a Detector over the given graph with the given config.
func New(g *railway.Graph, cfg Config) *Detector {
	return &Detector{graph: g, config: cfg, stats: newStats(), logger: log.Root()}
}

// SetLogger rebinds the detector's logger, following the teacher's
// InitializeLogger(parent) convention.
func (d *Detector) SetLogger(parent log.Logger) {
	d.logger = parent.New("module", "conflict")
}

// Stats returns a copy of the running statistics.
func (d *Detector) Stats() Stats {
	cp := Stats{CountsByKind: make(map[Kind]int, len(d.stats.CountsByKind)), TotalPairsExamined: d.stats.TotalPairsExamined, DetectCalls: d.stats.DetectCalls}
	for k, v := range d.stats.CountsByKind {
		cp.CountsByKind[k] = v
	}
	return cp
}

type sectionOcc struct {
	edgeID     string
	from, to   string
	start, end time.Time
	scheduleID string
	trainID    string
}

type platformOcc struct {
	nodeID     string
	platform   int
	start, end time.Time
	scheduleID string
	trainID    string
}

// DetectAll enumerates conflicts over the given schedules, deduplicated
// per spec §4.4 so the unordered pair {train1,train2} appears at most
// once per (location, kind).
func (d *Detector) DetectAll(schedules []*schedule.TrainSchedule) []Conflict {
	var all []Conflict
	seen := make(map[string]bool)
	add := func(c Conflict) {
		key := dedupKey(c)
		if seen[key] {
			return
		}
		seen[key] = true
		all = append(all, c)
		d.stats.CountsByKind[c.Kind]++
	}

	sectionOccs, platformOccs := d.buildOccupations(schedules)

	if d.config.DetectSectionOverlap {
		for _, c := range d.detectSectionOverlap(sectionOccs) {
			add(c)
		}
	}
	if d.config.DetectHeadOn {
		for _, c := range d.detectHeadOn(sectionOccs) {
			add(c)
		}
	}
	if d.config.DetectPlatformConflict {
		for _, c := range d.detectPlatformConflict(platformOccs) {
			add(c)
		}
	}
	if d.config.DetectTimingViolation {
		for _, c := range d.detectTimingViolations(schedules) {
			add(c)
		}
	}

	n := len(schedules)
	d.stats.TotalPairsExamined += n * (n - 1) / 2
	d.stats.DetectCalls++
	d.logger.Debug("detect_all complete", "schedules", n, "conflicts", len(all))
	return all
}

// buildOccupations materializes, for every schedule, the sequence of
// edge traversals (with occupation windows) and stop-level platform
// reservations it implies.
func (d *Detector) buildOccupations(schedules []*schedule.TrainSchedule) ([]sectionOcc, []platformOcc) {
	var sections []sectionOcc
	var platforms []platformOcc

	for _, s := range schedules {
		for i := 0; i+1 < len(s.Stops); i++ {
			from := s.Stops[i]
			to := s.Stops[i+1]
			path := d.graph.ShortestPath(from.NodeID, to.NodeID, railway.ByDistance)
			if path.Empty() {
				continue
			}
			for _, eid := range path.Edges {
				e, ok := d.graph.Edge(eid)
				if !ok {
					continue
				}
				sections = append(sections, sectionOcc{
					edgeID:     eid,
					from:       traversalFrom(e, path),
					to:         traversalTo(e, path),
					start:      from.Departure,
					end:        to.Arrival,
					scheduleID: s.ID,
					trainID:    s.TrainID,
				})
			}
		}
		for _, st := range s.Stops {
			if !st.IsStop || !st.HasPlatform() {
				continue
			}
			platforms = append(platforms, platformOcc{
				nodeID:     st.NodeID,
				platform:   st.Platform,
				start:      st.Arrival,
				end:        st.Departure,
				scheduleID: s.ID,
				trainID:    s.TrainID,
			})
		}
	}
	return sections, platforms
}

// traversalFrom/traversalTo resolve the *direction actually traveled*
// for one edge within a materialized path, since a bidirectional edge's
// stored Edge.From/To may not match the path's direction.
func traversalFrom(e railway.Edge, p railway.Path) string {
	for i, eid := range p.Edges {
		if eid == e.ID {
			return p.Nodes[i]
		}
	}
	return e.From
}

func traversalTo(e railway.Edge, p railway.Path) string {
	for i, eid := range p.Edges {
		if eid == e.ID {
			return p.Nodes[i+1]
		}
	}
	return e.To
}

func (d *Detector) detectSectionOverlap(occs []sectionOcc) []Conflict {
	var out []Conflict
	for i := 0; i < len(occs); i++ {
		for j := i + 1; j < len(occs); j++ {
			a, b := occs[i], occs[j]
			if a.trainID == b.trainID {
				continue
			}
			if a.edgeID != b.edgeID || a.from != b.from || a.to != b.to {
				continue
			}
			if !overlapsWithBuffer(a.start, a.end, b.start, b.end, d.config.SectionBufferSeconds) {
				continue
			}
			overlap := overlapSecondsPostBuffer(a.start, a.end, b.start, b.end, d.config.SectionBufferSeconds)
			out = append(out, Conflict{
				Kind:        SectionOverlap,
				Train1:      a.trainID,
				Train2:      b.trainID,
				Location:    fmt.Sprintf("%s->%s", a.from, a.to),
				Time:        maxTime(a.start, b.start),
				Description: fmt.Sprintf("trains %s and %s both occupy section %s->%s with overlapping windows", a.trainID, b.trainID, a.from, a.to),
				Severity:    severityFor(overlap),
				SectionFrom: a.from,
				SectionTo:   a.to,
			})
		}
	}
	return out
}

func (d *Detector) detectHeadOn(occs []sectionOcc) []Conflict {
	var out []Conflict
	for i := 0; i < len(occs); i++ {
		for j := i + 1; j < len(occs); j++ {
			a, b := occs[i], occs[j]
			if a.trainID == b.trainID {
				continue
			}
			if a.edgeID != b.edgeID {
				continue
			}
			// opposite direction on the same physical edge
			if !(a.from == b.to && a.to == b.from) {
				continue
			}
			e, ok := d.graph.Edge(a.edgeID)
			if !ok || !e.Bidirectional || e.Kind != railway.Single {
				continue
			}
			if !overlapsWithBuffer(a.start, a.end, b.start, b.end, d.config.HeadOnBufferSeconds) {
				continue
			}
			lo, hi := a.from, a.to
			if lo > hi {
				lo, hi = hi, lo
			}
			out = append(out, Conflict{
				Kind:        HeadOn,
				Train1:      a.trainID,
				Train2:      b.trainID,
				Location:    fmt.Sprintf("%s->%s", lo, hi),
				Time:        maxTime(a.start, b.start),
				Description: fmt.Sprintf("trains %s and %s approach head-on on single track %s<->%s", a.trainID, b.trainID, a.from, a.to),
				Severity:    10,
				SectionFrom: lo,
				SectionTo:   hi,
			})
		}
	}
	return out
}

func (d *Detector) detectPlatformConflict(occs []platformOcc) []Conflict {
	var out []Conflict
	for i := 0; i < len(occs); i++ {
		for j := i + 1; j < len(occs); j++ {
			a, b := occs[i], occs[j]
			if a.trainID == b.trainID {
				continue
			}
			if a.nodeID != b.nodeID || a.platform != b.platform {
				continue
			}
			if !overlapsWithBuffer(a.start, a.end, b.start, b.end, d.config.PlatformBufferSeconds) {
				continue
			}
			overlap := overlapSecondsPostBuffer(a.start, a.end, b.start, b.end, d.config.PlatformBufferSeconds)
			out = append(out, Conflict{
				Kind:        PlatformConflict,
				Train1:      a.trainID,
				Train2:      b.trainID,
				Location:    a.nodeID,
				Time:        maxTime(a.start, b.start),
				Description: fmt.Sprintf("trains %s and %s both occupy platform %d at %s", a.trainID, b.trainID, a.platform, a.nodeID),
				Severity:    severityFor(overlap),
				Platform:    a.platform,
			})
		}
	}
	return out
}

func (d *Detector) detectTimingViolations(schedules []*schedule.TrainSchedule) []Conflict {
	var out []Conflict
	for _, s := range schedules {
		for i := 0; i+1 < len(s.Stops); i++ {
			from := s.Stops[i]
			to := s.Stops[i+1]
			actual := to.Arrival.Sub(from.Departure)
			minTT := d.graph.ShortestPath(from.NodeID, to.NodeID, railway.ByTravelTime).MinTravelTime
			if minTT > 0 && actual.Seconds() < d.config.TimingMinRatio*minTT.Seconds() {
				out = append(out, Conflict{
					Kind:        TimingViolation,
					Train1:      s.TrainID,
					Location:    fmt.Sprintf("%s->%s", from.NodeID, to.NodeID),
					Time:        from.Departure,
					Description: fmt.Sprintf("scheduled travel time %s is below %.0f%% of the graph-minimum %s", actual, d.config.TimingMinRatio*100, minTT),
					Severity:    timingSeverity(actual.Seconds(), minTT.Seconds()),
				})
			}
		}
		for _, st := range s.Stops {
			if !st.IsStop {
				continue
			}
			dwell := st.DwellTime().Seconds()
			if dwell >= 0 && dwell < d.config.MinDwellSeconds {
				out = append(out, Conflict{
					Kind:        TimingViolation,
					Train1:      s.TrainID,
					Location:    st.NodeID,
					Time:        st.Arrival,
					Description: fmt.Sprintf("dwell time %.0fs at %s is below minimum %.0fs", dwell, st.NodeID, d.config.MinDwellSeconds),
					Severity:    timingSeverity(dwell, d.config.MinDwellSeconds),
				})
			}
		}
	}
	return out
}

// timingSeverity scales with how far below the threshold the observed
// value falls; floored at 1 since any flagged violation is real.
func timingSeverity(observed, threshold float64) float64 {
	if threshold <= 0 {
		return 5
	}
	deficit := (threshold - observed) / threshold // in (0,1]
	if deficit < 0 {
		deficit = 0
	}
	if deficit > 1 {
		deficit = 1
	}
	return 1 + deficit*6 // ranges (1,7]
}
