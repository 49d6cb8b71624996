// Package frame schedules work to run before the next display refresh.
package frame

import (
	"sync"
	"time"
)

// Callback receives the refresh timestamp measured from the scheduler origin.
type Callback func(ts time.Duration)

// Handle identifies a pending request. The zero Handle is never issued.
type Handle uint64

// Scheduler requests a callback before the next display refresh.
// Cancelling a handle that already fired or was never issued is a no-op.
type Scheduler interface {
	Request(cb Callback) Handle
	Cancel(h Handle)
}

type request struct {
	handle Handle
	cb     Callback
}

// queue holds pending requests in issue order.
type queue struct {
	mu      sync.Mutex
	next    Handle
	pending []request
}

func (q *queue) Request(cb Callback) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.pending = append(q.pending, request{handle: q.next, cb: cb})
	return q.next
}

func (q *queue) Cancel(h Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, r := range q.pending {
		if r.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// take removes and returns one pending request that was issued no later
// than limit. Requests made while a refresh runs wait for the next one.
func (q *queue) take(limit Handle) (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 || q.pending[0].handle > limit {
		return request{}, false
	}
	r := q.pending[0]
	q.pending = q.pending[1:]
	return r, true
}

func (q *queue) issued() Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.next
}

func (q *queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// flush runs the requests issued before the refresh began. Each request is
// dequeued right before it runs, so a callback cancelling a later request
// still prevents it from firing.
func (q *queue) flush(ts time.Duration) int {
	limit := q.issued()
	n := 0
	for {
		r, ok := q.take(limit)
		if !ok {
			return n
		}
		r.cb(ts)
		n++
	}
}
