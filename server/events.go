package server

import (
	"strconv"
	"sync"
	"time"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/realtime"
	"github.com/railwayai/railwayai/resolver"
)

// Event is one entry in the recent-events feed: a durable, polling-friendly
// record of conflicts detected, resolutions applied and realtime adjustments
// generated, distinct from the websocket push which only reaches clients
// connected at the moment it happens.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Kind      string                 `json:"kind"`
	Severity  string                 `json:"severity"`
	Details   map[string]interface{} `json:"details"`
}

// eventLog is a fixed-capacity ring buffer with non-blocking fan-out to
// websocket subscribers, the same tradeoff the teacher's audit log makes:
// slow subscribers lose entries rather than stall detection/resolution.
type eventLog struct {
	mu          sync.RWMutex
	entries     []Event
	capacity    int
	nextID      int64
	subscribers map[chan Event]bool
}

func newEventLog(capacity int) *eventLog {
	return &eventLog{
		capacity:    capacity,
		entries:     make([]Event, 0, capacity),
		subscribers: make(map[chan Event]bool),
	}
}

func (l *eventLog) append(evt Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	evt.ID = strconv.FormatInt(l.nextID, 10)
	if evt.Timestamp == "" {
		evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if len(l.entries) == l.capacity {
		copy(l.entries[0:], l.entries[1:])
		l.entries[len(l.entries)-1] = evt
	} else {
		l.entries = append(l.entries, evt)
	}
	for ch := range l.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (l *eventLog) subscribe() chan Event {
	ch := make(chan Event, 256)
	l.mu.Lock()
	l.subscribers[ch] = true
	l.mu.Unlock()
	return ch
}

func (l *eventLog) unsubscribe(ch chan Event) {
	l.mu.Lock()
	delete(l.subscribers, ch)
	l.mu.Unlock()
	close(ch)
}

// since returns up to limit entries with ID strictly greater than sinceID.
func (l *eventLog) since(sinceID int64, limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, 0, limit)
	for _, e := range l.entries {
		id, _ := strconv.ParseInt(e.ID, 10, 64)
		if id > sinceID {
			out = append(out, e)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

func recordConflictEvent(l *eventLog, c conflict.Conflict) {
	l.append(Event{
		Kind:     "conflict_detected",
		Severity: severityLabel(c.Severity),
		Details: map[string]interface{}{
			"conflictKind": string(c.Kind),
			"train1":       c.Train1,
			"train2":       c.Train2,
			"location":     c.Location,
			"description":  c.Description,
			"severity":     c.Severity,
		},
	})
}

func recordResolutionEvent(l *eventLog, r resolver.Result) {
	sev := "INFO"
	if !r.Success {
		sev = "WARN"
	}
	l.append(Event{
		Kind:     "conflict_resolved",
		Severity: sev,
		Details: map[string]interface{}{
			"strategy":       string(r.Strategy),
			"description":    r.Description,
			"success":        r.Success,
			"modifiedTrains": r.ModifiedTrains,
			"totalDelaySec":  r.TotalDelaySec,
			"qualityScore":   r.QualityScore,
		},
	})
}

func recordAdjustmentEvent(l *eventLog, a realtime.Adjustment) {
	l.append(Event{
		Kind:     "adjustment_applied",
		Severity: "INFO",
		Details: map[string]interface{}{
			"trainId":       a.TrainID,
			"type":          string(a.Type),
			"justification": a.Justification,
		},
	})
}

func severityLabel(s float64) string {
	switch {
	case s >= 0.8:
		return "CRITICAL"
	case s >= 0.5:
		return "WARN"
	default:
		return "INFO"
	}
}
