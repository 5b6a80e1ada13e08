package route

import (
	"strings"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
)

func distanceScore(cfg Config, distanceKm, baseDistanceKm float64) float64 {
	if baseDistanceKm <= 0 {
		return 0.5
	}
	ratio := distanceKm / baseDistanceKm
	switch {
	case ratio <= 1.0:
		return 1.0
	case ratio <= cfg.MaxDistanceMultiplier:
		return 1.0 - (ratio-1.0)/(cfg.MaxDistanceMultiplier-1.0)
	default:
		return 0.0
	}
}

func timeScore(cfg Config, timeHours, baseTimeHours float64) float64 {
	if baseTimeHours <= 0 {
		return 0.5
	}
	ratio := timeHours / baseTimeHours
	switch {
	case ratio <= 1.0:
		return 1.0
	case ratio <= cfg.MaxTimeMultiplier:
		return 1.0 - (ratio-1.0)/(cfg.MaxTimeMultiplier-1.0)
	default:
		return 0.0
	}
}

// conflictScore counts conflicts whose Location substring appears in
// any edge id on the path, penalizing 0.2 per hit.
func conflictScore(p railway.Path, conflicts []conflict.Conflict) float64 {
	count := 0
	for _, c := range conflicts {
		if c.Location == "" {
			continue
		}
		for _, eid := range p.Edges {
			if strings.Contains(eid, c.Location) {
				count++
				break
			}
		}
	}
	if count == 0 {
		return 1.0
	}
	score := 1.0 - float64(count)*0.2
	if score < 0 {
		return 0
	}
	return score
}

func trackQualityScore(cfg Config, g *railway.Graph, p railway.Path) float64 {
	total := len(p.Edges)
	if total == 0 {
		return 0.5
	}
	var highSpeed, single int
	for _, eid := range p.Edges {
		e, ok := g.Edge(eid)
		if !ok {
			continue
		}
		switch e.Kind {
		case railway.HighSpeed:
			highSpeed++
		case railway.Single:
			single++
		}
	}
	score := 0.5
	if cfg.PreferHighSpeed {
		score += 0.3 * (float64(highSpeed) / float64(total))
	}
	if cfg.AvoidSingleTrack {
		score -= 0.2 * (float64(single) / float64(total))
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// evaluateRoute scores a candidate path against an optional base path.
func evaluateRoute(cfg Config, g *railway.Graph, p railway.Path, basePath *railway.Path, conflicts []conflict.Conflict) Quality {
	q := Quality{
		TotalDistanceKm:    p.TotalDistance,
		EstimatedTimeHours: p.MinTravelTime.Hours(),
		NumStops:           len(p.Nodes),
	}
	if basePath != nil {
		q.DistanceScore = distanceScore(cfg, p.TotalDistance, basePath.TotalDistance)
		q.TimeScore = timeScore(cfg, p.MinTravelTime.Hours(), basePath.MinTravelTime.Hours())
	} else {
		q.DistanceScore = 0.8
		q.TimeScore = 0.8
	}
	q.TrackQualityScore = trackQualityScore(cfg, g, p)
	if conflicts != nil {
		q.ConflictScore = conflictScore(p, conflicts)
	} else {
		q.ConflictScore = 0.9
	}
	q.OverallScore = cfg.DistanceWeight*q.DistanceScore +
		cfg.TimeWeight*q.TimeScore +
		cfg.ConflictWeight*q.ConflictScore +
		cfg.TrackQualityWeight*q.TrackQualityScore
	return q
}

func meetsConstraints(cfg Config, p railway.Path, basePath *railway.Path) bool {
	if p.Empty() {
		return false
	}
	if basePath == nil {
		return true
	}
	if basePath.TotalDistance > 0 && p.TotalDistance/basePath.TotalDistance > cfg.MaxDistanceMultiplier {
		return false
	}
	if basePath.MinTravelTime > 0 && p.MinTravelTime.Hours()/basePath.MinTravelTime.Hours() > cfg.MaxTimeMultiplier {
		return false
	}
	return true
}
