package resolver

// qualityScore implements the decision table's formula exactly.
// platformChanges counts only when strategy is ChangePlatform, since
// the original scores it a flat 0.9 rather than deriving it here; this
// helper is used for the delay/adjust-speed/priority-based strategies.
func qualityScore(cfg Config, totalDelaySeconds float64, modifiedTrains int) float64 {
	score := 1.0
	delayMinutes := totalDelaySeconds / 60.0
	score -= (delayMinutes / (cfg.MaxDelaySeconds / 60.0)) * cfg.DelayWeight * 0.3
	score -= float64(modifiedTrains) * 0.05
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
