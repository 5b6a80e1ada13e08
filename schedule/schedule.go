package schedule

import (
	"time"

	"github.com/railwayai/railwayai/railerr"
)

// Append adds a stop to the end of the schedule.
func (t *TrainSchedule) Append(s Stop) {
	t.Stops = append(t.Stops, s)
}

// InsertAt inserts a stop at the given index, shifting later stops back.
func (t *TrainSchedule) InsertAt(index int, s Stop) error {
	if index < 0 || index > len(t.Stops) {
		return railerr.New(railerr.InvalidArgument, "schedule.InsertAt")
	}
	t.Stops = append(t.Stops, Stop{})
	copy(t.Stops[index+1:], t.Stops[index:])
	t.Stops[index] = s
	return nil
}

// RemoveAt deletes the stop at the given index.
func (t *TrainSchedule) RemoveAt(index int) error {
	if index < 0 || index >= len(t.Stops) {
		return railerr.New(railerr.InvalidArgument, "schedule.RemoveAt")
	}
	t.Stops = append(t.Stops[:index], t.Stops[index+1:]...)
	return nil
}

// ByNode returns every stop at the given node, in schedule order.
func (t *TrainSchedule) ByNode(nodeID string) []Stop {
	var out []Stop
	for _, s := range t.Stops {
		if s.NodeID == nodeID {
			out = append(out, s)
		}
	}
	return out
}

// IndexOfNode returns the index of the first stop at nodeID, or -1.
func (t *TrainSchedule) IndexOfNode(nodeID string) int {
	for i, s := range t.Stops {
		if s.NodeID == nodeID {
			return i
		}
	}
	return -1
}

// ShiftFrom adds delay to arrival and departure of every stop from index
// onward (forward-only propagation, spec §4.5).
func (t *TrainSchedule) ShiftFrom(index int, delay time.Duration) {
	for i := index; i < len(t.Stops); i++ {
		t.Stops[i].Arrival = t.Stops[i].Arrival.Add(delay)
		t.Stops[i].Departure = t.Stops[i].Departure.Add(delay)
	}
}
