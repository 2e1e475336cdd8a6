package midi

import "sync"

// EventQueue holds the events delivered for one processing block, in
// delivery order, up to a fixed limit.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewEventQueue creates a queue holding at most limit events. A limit of
// zero or less means no limit.
func NewEventQueue(limit int) *EventQueue {
	capacity := 128
	if limit > 0 && limit < capacity {
		capacity = limit
	}
	return &EventQueue{
		events: make([]Event, 0, capacity),
		limit:  limit,
	}
}

// Add appends event. It returns false, leaving the queue unchanged, when the
// queue is full.
func (q *EventQueue) Add(event Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && len(q.events) >= q.limit {
		return false
	}
	q.events = append(q.events, event)
	return true
}

// Drain calls fn for every queued event in delivery order and empties the
// queue. The backing storage is reused, so draining does not allocate.
// fn must not call back into the queue.
func (q *EventQueue) Drain(fn func(Event)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.events {
		fn(e)
		q.events[i] = nil
	}
	q.events = q.events[:0]
}

// Clear drops every queued event.
func (q *EventQueue) Clear() {
	q.Drain(func(Event) {})
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
