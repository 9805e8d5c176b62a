package server

import (
	"sync"

	"github.com/eapache/queue"
)

// Outbox queues encoded frames for one connection until its writer goroutine
// can deliver them. The queue is unbounded: entries are kept until fully
// written or the connection is torn down, never dropped under write
// backpressure.
type Outbox struct {
	mu     sync.Mutex
	q      *queue.Queue
	ready  chan struct{}
	closed bool
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{
		q:     queue.New(),
		ready: make(chan struct{}, 1),
	}
}

// Push enqueues an encoded frame. Returns false if the outbox is closed.
func (o *Outbox) Push(frame []byte) bool {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false
	}
	o.q.Add(frame)
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return true
}

// Pop removes and returns the oldest queued frame. ok is false when the queue
// is empty.
func (o *Outbox) Pop() (frame []byte, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.q.Length() == 0 {
		return nil, false
	}
	return o.q.Remove().([]byte), true
}

// Len returns the number of queued frames.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.q.Length()
}

// Ready signals when at least one frame has been queued since the last drain.
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}

// Close marks the outbox closed and discards anything still queued.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	for o.q.Length() > 0 {
		o.q.Remove()
	}
}
