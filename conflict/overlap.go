package conflict

import "time"

// overlapsWithBuffer implements spec §4.4's symmetric-expansion overlap
// predicate: start1 - b < end2 + b && start2 - b < end1 + b, equivalently
// max(start1,start2) - min(end1,end2) < 2b.
func overlapsWithBuffer(start1, end1, start2, end2 time.Time, bufferSeconds float64) bool {
	buf := time.Duration(bufferSeconds * float64(time.Second))
	return start1.Add(-buf).Before(end2.Add(buf)) && start2.Add(-buf).Before(end1.Add(buf))
}

// overlapSecondsPostBuffer returns the post-buffer overlap duration used
// for severity scoring: 2b minus the (possibly negative) gap between the
// two raw windows.
func overlapSecondsPostBuffer(start1, end1, start2, end2 time.Time, bufferSeconds float64) float64 {
	gap := maxTime(start1, start2).Sub(minTime(end1, end2)).Seconds()
	overlap := 2*bufferSeconds - gap
	if overlap < 0 {
		return 0
	}
	return overlap
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// severityFor maps a post-buffer overlap duration (seconds) to a
// [0,10] severity using the spec §4.4 piecewise-linear buckets. headOn
// conflicts always score 10 regardless of overlap (handled by the
// caller, not here).
func severityFor(overlapSeconds float64) float64 {
	switch {
	case overlapSeconds < 60:
		return lerp(overlapSeconds, 0, 60, 1, 3)
	case overlapSeconds < 300:
		return lerp(overlapSeconds, 60, 300, 4, 6)
	case overlapSeconds < 600:
		return lerp(overlapSeconds, 300, 600, 7, 8)
	default:
		// Unbounded tail: scale linearly up to 1800s (3x the largest
		// configured buffer) and clamp at 10 beyond that.
		if overlapSeconds > 1800 {
			return 10
		}
		return lerp(overlapSeconds, 600, 1800, 9, 10)
	}
}

// lerp linearly interpolates x from [x0,x1] into [y0,y1].
func lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 <= x0 {
		return y0
	}
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}
