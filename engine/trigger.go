package engine

import "sort"

// TriggerEvent is one emitted lifecycle event.
type TriggerEvent struct {
	Hook         TriggerHook
	SourceID     int
	Side         TeamSide
	Slot         int
	Timestamp    float64
	CourseIndex  int
	PayloadInt   int
	PayloadFloat float64
}

// TriggerQueue holds the events emitted since the last resolution pass.
type TriggerQueue struct {
	events []TriggerEvent
}

func (q *TriggerQueue) Add(ev TriggerEvent) { q.events = append(q.events, ev) }

func (q *TriggerQueue) Len() int { return len(q.events) }

func (q *TriggerQueue) Clear() { q.events = q.events[:0] }

// Drain returns the queued events and empties the queue.
func (q *TriggerQueue) Drain() []TriggerEvent {
	out := append([]TriggerEvent(nil), q.events...)
	q.Clear()
	return out
}

// SortForDispatch orders events by slot, then player before opponent, then
// source current zing descending, then source id. zingOf reports the current
// zing of a source; unknown sources count as zero. Hook and payload break any
// remaining tie so the order never depends on emission order.
func SortForDispatch(events []TriggerEvent, zingOf func(id int) (int, bool)) {
	zing := func(id int) int {
		if zingOf == nil {
			return 0
		}
		z, ok := zingOf(id)
		if !ok {
			return 0
		}
		return z
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		if a.Side != b.Side {
			return a.Side == SidePlayer
		}
		if za, zb := zing(a.SourceID), zing(b.SourceID); za != zb {
			return za > zb
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.Hook != b.Hook {
			return a.Hook < b.Hook
		}
		return a.PayloadInt < b.PayloadInt
	})
}
