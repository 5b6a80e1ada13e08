package resolver

import (
	"time"

	"github.com/railwayai/railwayai/schedule"
)

// applyDelay shifts every stop at index >= 0 (the whole schedule, since
// resolution never targets a mid-journey stop specifically) by delay,
// forward-only, matching schedule.TrainSchedule.ShiftFrom.
func applyDelay(s *schedule.TrainSchedule, delaySeconds float64) {
	s.ShiftFrom(0, time.Duration(delaySeconds*float64(time.Second)))
}

func findSchedule(trainID string, schedules []*schedule.TrainSchedule) *schedule.TrainSchedule {
	for _, s := range schedules {
		if s.TrainID == trainID {
			return s
		}
	}
	return nil
}
