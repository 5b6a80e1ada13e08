package railway

import "time"

func durationFromHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
