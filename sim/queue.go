// Implements the EventQueue, which holds all events waiting to be processed.
// Events are ordered by timestamp; ties are broken by insertion order.

package sim

import "container/heap"

// queueEntry wraps an Event with a sequence ID for deterministic FIFO
// tie-breaking when timestamps are equal.
type queueEntry struct {
	event Event
	seqID int64
}

// eventHeap is a min-heap ordered by (Timestamp, seqID).
// Implements heap.Interface.
type eventHeap []queueEntry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].event.Timestamp(), h[j].event.Timestamp()
	if !ti.Equal(tj) {
		return ti.Before(tj)
	}
	return h[i].seqID < h[j].seqID
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queueEntry))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queueEntry{}
	*h = old[:n-1]
	return item
}

// EventQueue is a time-ordered priority queue of live events. Each pushed
// event is popped exactly once; there is no peek or removal by key.
type EventQueue struct {
	events  eventHeap
	nextSeq int64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make(eventHeap, 0)}
}

// Push inserts an event and returns the sequence number assigned to it.
func (q *EventQueue) Push(ev Event) int64 {
	seq := q.nextSeq
	q.nextSeq++
	heap.Push(&q.events, queueEntry{event: ev, seqID: seq})
	return seq
}

// Pop removes and returns the event with the smallest (timestamp, sequence)
// key, together with its sequence number. Returns nil on an empty queue.
func (q *EventQueue) Pop() (Event, int64) {
	if len(q.events) == 0 {
		return nil, -1
	}
	entry := heap.Pop(&q.events).(queueEntry)
	return entry.event, entry.seqID
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// IsEmpty reports whether the queue holds no events.
func (q *EventQueue) IsEmpty() bool {
	return len(q.events) == 0
}
