package schedule

import (
	"math"
	"time"
)

// TravelTime estimates the time to cover lengthKm on a track permitting
// trackMaxSpeedKmh, honoring a trapezoidal accelerate/cruise/brake
// profile capped at the lesser of the train's and the track's max speed
// (spec §3, Train's derived contract).
func (tr Train) TravelTime(lengthKm, trackMaxSpeedKmh float64) time.Duration {
	if lengthKm <= 0 {
		return 0
	}
	vCapKmh := trackMaxSpeedKmh
	if tr.MaxSpeedKmh > 0 && tr.MaxSpeedKmh < vCapKmh {
		vCapKmh = tr.MaxSpeedKmh
	}
	if vCapKmh <= 0 {
		return 0
	}

	// Work in SI units (m, m/s, s) then convert back.
	v := vCapKmh / 3.6
	lengthM := lengthKm * 1000
	a := tr.AccelMs2
	d := tr.DecelMs2
	if a <= 0 {
		a = 1.0
	}
	if d <= 0 {
		d = 1.0
	}

	accelDist := (v * v) / (2 * a)
	decelDist := (v * v) / (2 * d)

	if accelDist+decelDist <= lengthM {
		// Trapezoidal: reach cruise speed, hold it, then brake.
		accelTime := v / a
		decelTime := v / d
		cruiseDist := lengthM - accelDist - decelDist
		cruiseTime := cruiseDist / v
		return secondsToDuration(accelTime + cruiseTime + decelTime)
	}

	// Triangular: never reach v; solve for the attained peak speed.
	peak := math.Sqrt(2 * lengthM / (1/a + 1/d))
	return secondsToDuration(peak/a + peak/d)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
