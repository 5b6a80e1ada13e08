package route

import (
	"fmt"
	"sort"
	"strings"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/schedule"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Optimizer finds and scores alternative routes when a conflict cannot
// be resolved by delay or platform change alone.
type Optimizer struct {
	graph  *railway.Graph
	config Config
	stats  Stats
	logger log.Logger
}

// New builds an Optimizer over the given graph.
func New(g *railway.Graph, cfg Config) *Optimizer {
	return &Optimizer{graph: g, config: cfg, logger: log.Root()}
}

// SetLogger rebinds the optimizer's logger.
func (o *Optimizer) SetLogger(parent log.Logger) {
	o.logger = parent.New("module", "route")
}

// Stats returns the statistics from the last FindAlternatives call.
func (o *Optimizer) Stats() Stats { return o.stats }

// FindAlternatives returns up to config.MaxAlternatives alternative
// routes from start to end, sorted by descending overall score.
func (o *Optimizer) FindAlternatives(start, end string, excludeEdges []string, conflicts []conflict.Conflict) []Alternative {
	o.stats = Stats{}

	base := o.graph.ShortestPath(start, end, railway.ByDistance)
	if base.Empty() {
		return nil
	}

	kPaths, err := o.graph.KShortestPaths(start, end, o.config.MaxAlternatives+1, railway.ByDistance)
	if err != nil {
		o.logger.Warn("k_shortest_paths failed", "err", err)
		return nil
	}
	o.stats.AlternativesConsidered = len(kPaths)

	excluded := make(map[string]bool, len(excludeEdges))
	for _, e := range excludeEdges {
		excluded[e] = true
	}

	var alternatives []Alternative
	for _, p := range kPaths {
		if sameNodeSequence(p, base) {
			continue
		}
		usesExcluded := false
		for _, eid := range p.Edges {
			if excluded[eid] {
				usesExcluded = true
				break
			}
		}
		if usesExcluded {
			continue
		}
		if !meetsConstraints(o.config, p, &base) {
			continue
		}
		q := evaluateRoute(o.config, o.graph, p, &base, conflicts)
		alt := Alternative{Path: p, Quality: q, Description: describe(p, q)}
		if alt.Quality.OverallScore > 0 {
			alternatives = append(alternatives, alt)
			o.stats.ValidAlternatives++
		}
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Quality.OverallScore > alternatives[j].Quality.OverallScore
	})
	if len(alternatives) > o.config.MaxAlternatives {
		alternatives = alternatives[:o.config.MaxAlternatives]
	}
	if len(alternatives) > 0 {
		o.stats.BestScore = alternatives[0].Quality.OverallScore
	}
	return alternatives
}

// FindBestReroute finds the best alternative route for an entire
// schedule, considering only the first and last stops as endpoints.
func (o *Optimizer) FindBestReroute(s *schedule.TrainSchedule, conflicts []conflict.Conflict) (Alternative, bool) {
	if len(s.Stops) < 2 {
		return Alternative{}, false
	}
	start := s.Stops[0].NodeID
	end := s.Stops[len(s.Stops)-1].NodeID
	alternatives := o.FindAlternatives(start, end, nil, conflicts)
	if len(alternatives) == 0 {
		return Alternative{}, false
	}
	return alternatives[0], true
}

func sameNodeSequence(a, b railway.Path) bool {
	if len(a.Nodes) != len(b.Nodes) {
		return false
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			return false
		}
	}
	return true
}

func describe(p railway.Path, q Quality) string {
	via := "direct"
	if len(p.Nodes) > 2 {
		via = strings.Join(p.Nodes[1:len(p.Nodes)-1], ", ")
	}
	return fmt.Sprintf("alternative route via %s (%.1f km, %.1f min, quality %.2f)", via, q.TotalDistanceKm, q.EstimatedTimeHours*60, q.OverallScore)
}
