package railway

import (
	"sort"
	"time"

	"github.com/railwayai/railwayai/railerr"
)

// reservation is a closed-open occupancy window on one platform.
type reservation struct {
	start   time.Time
	end     time.Time
	trainID string
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	// [start, end) intervals overlap iff start1 < end2 && start2 < end1.
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// platformLedger holds, per platform number, a start-time-ordered list of
// reservations. It is embedded (unexported) in Node so the sorted
// non-overlap invariant can only be touched through the methods below —
// spec §9's "platform ledger hidden behind the node" note.
type platformLedger struct {
	byPlatform map[int][]reservation
}

func (l *platformLedger) ensure() {
	if l.byPlatform == nil {
		l.byPlatform = make(map[int][]reservation)
	}
}

// IsPlatformFree reports whether platform p has no reservation overlapping
// [start, end).
func (n *Node) IsPlatformFree(p int, start, end time.Time) bool {
	n.platforms.ensure()
	for _, r := range n.platforms.byPlatform[p] {
		if overlaps(r.start, r.end, start, end) {
			return false
		}
	}
	return true
}

// FirstFreePlatform returns the lowest-numbered platform in
// [1, PlatformCount] free for [start, end), or ok=false if none is.
func (n *Node) FirstFreePlatform(start, end time.Time) (platform int, ok bool) {
	for p := 1; p <= n.PlatformCount; p++ {
		if n.IsPlatformFree(p, start, end) {
			return p, true
		}
	}
	return 0, false
}

// Reserve atomically checks and inserts a reservation, keeping the
// platform's list in start-time order (stable merge insert).
func (n *Node) Reserve(platform int, trainID string, start, end time.Time) error {
	if platform < 1 || platform > n.PlatformCount {
		return railerr.New(railerr.InvalidArgument, "railway.Reserve")
	}
	n.platforms.ensure()
	if !n.IsPlatformFree(platform, start, end) {
		return railerr.New(railerr.PlatformBusy, "railway.Reserve")
	}
	list := n.platforms.byPlatform[platform]
	idx := sort.Search(len(list), func(i int) bool { return list[i].start.After(start) || list[i].start.Equal(start) })
	list = append(list, reservation{})
	copy(list[idx+1:], list[idx:])
	list[idx] = reservation{start: start, end: end, trainID: trainID}
	n.platforms.byPlatform[platform] = list
	return nil
}

// ReleaseFor removes every reservation on platform p held by trainID.
func (n *Node) ReleaseFor(platform int, trainID string) {
	n.platforms.ensure()
	list := n.platforms.byPlatform[platform]
	kept := list[:0]
	for _, r := range list {
		if r.trainID != trainID {
			kept = append(kept, r)
		}
	}
	n.platforms.byPlatform[platform] = kept
}

// ClearPlatforms drops every reservation on every platform of the node.
func (n *Node) ClearPlatforms() {
	n.platforms.byPlatform = make(map[int][]reservation)
}
