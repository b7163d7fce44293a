package sched

import "container/heap"

// Queue is a simulation-time ordered event queue. Delayed work (corpse
// removal, pickup despawn) is scheduled against the simulation clock and run
// by Advance, which keeps cleanup deterministic and testable without
// wall-clock waits.
type Queue struct {
	entries entryHeap
	nextSeq uint64
}

type entry struct {
	at  float64 // simulation seconds
	seq uint64  // tie-breaker: schedule order
	fn  func()
}

// NewQueue creates an empty scheduled-event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule registers fn to run when simulation time reaches at.
func (q *Queue) Schedule(at float64, fn func()) {
	q.nextSeq++
	heap.Push(&q.entries, entry{at: at, seq: q.nextSeq, fn: fn})
}

// Advance runs every entry due at or before now, in (time, schedule) order,
// and returns how many ran. Entries scheduled by a running callback are
// honored within the same Advance if already due.
func (q *Queue) Advance(now float64) int {
	ran := 0
	for q.entries.Len() > 0 && q.entries[0].at <= now {
		e := heap.Pop(&q.entries).(entry)
		e.fn()
		ran++
	}
	return ran
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return q.entries.Len()
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
