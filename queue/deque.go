package queue

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
)

// unboundedDeque is the unbounded Deque flavor: non-blocking
// Enqueue/EnqueueFirst/Dequeue. Backed by gammazero/deque, the same
// ring-buffer deque the rest of the pack reaches for when it needs O(1)
// access at both ends instead of container/list's per-node allocation.
type unboundedDeque struct {
	mu sync.Mutex
	d  deque.Deque[entry]
}

// NewUnboundedDeque returns an unbounded, non-blocking Deque user queue.
func NewUnboundedDeque() Deque {
	return &unboundedDeque{}
}

func (q *unboundedDeque) Enqueue(receiver, envelope any) {
	q.mu.Lock()
	q.d.PushBack(entry{receiver: receiver, envelope: envelope})
	q.mu.Unlock()
}

func (q *unboundedDeque) EnqueueFirst(receiver, envelope any) {
	q.mu.Lock()
	q.d.PushFront(entry{receiver: receiver, envelope: envelope})
	q.mu.Unlock()
}

func (q *unboundedDeque) Dequeue() any {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.d.Len() == 0 {
		return nil
	}
	e := q.d.PopFront()
	return e.envelope
}

func (q *unboundedDeque) HasMessages() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.d.Len() > 0
}

func (q *unboundedDeque) NumberOfMessages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.d.Len()
}

func (q *unboundedDeque) CleanUp(owner any, deadLetters DeadLetterSink) {
	q.mu.Lock()
	pending := make([]entry, 0, q.d.Len())
	for q.d.Len() > 0 {
		pending = append(pending, q.d.PopFront())
	}
	q.mu.Unlock()
	if deadLetters == nil {
		return
	}
	for _, p := range pending {
		receiver := p.receiver
		if receiver == nil {
			receiver = owner
		}
		deadLetters.DeadLetter(receiver, p.envelope)
	}
}

// boundedDeque is the bounded Deque flavor: offer/offerFirst with a
// push-timeout, dead-letter diversion on timeout, non-blocking Dequeue.
type boundedDeque struct {
	mu          sync.Mutex
	notEmpty    chan struct{}
	d           deque.Deque[entry]
	capacity    int
	pushTimeout time.Duration
	deadLetters DeadLetterSink
}

// NewBoundedDeque returns a bounded Deque user queue of the given capacity.
// pushTimeout semantics match NewBoundedFIFO.
func NewBoundedDeque(capacity int, pushTimeout time.Duration, deadLetters DeadLetterSink) Deque {
	if capacity < 0 {
		capacity = 0
	}
	return &boundedDeque{notEmpty: make(chan struct{}, 1), capacity: capacity, pushTimeout: pushTimeout, deadLetters: deadLetters}
}

func (q *boundedDeque) signal() {
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

func (q *boundedDeque) tryPush(front bool, e entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && q.d.Len() >= q.capacity {
		return false
	}
	if front {
		q.d.PushFront(e)
	} else {
		q.d.PushBack(e)
	}
	return true
}

func (q *boundedDeque) offer(front bool, receiver, envelope any) {
	e := entry{receiver: receiver, envelope: envelope}
	if q.tryPush(front, e) {
		q.signal()
		return
	}
	if q.pushTimeout <= 0 {
		for {
			<-q.notEmpty
			if q.tryPush(front, e) {
				q.signal()
				return
			}
		}
	}
	timer := time.NewTimer(q.pushTimeout)
	defer timer.Stop()
	for {
		select {
		case <-q.notEmpty:
			if q.tryPush(front, e) {
				q.signal()
				return
			}
		case <-timer.C:
			if q.deadLetters != nil {
				q.deadLetters.DeadLetter(receiver, envelope)
			}
			return
		}
	}
}

func (q *boundedDeque) Enqueue(receiver, envelope any) { q.offer(false, receiver, envelope) }

func (q *boundedDeque) EnqueueFirst(receiver, envelope any) { q.offer(true, receiver, envelope) }

func (q *boundedDeque) Dequeue() any {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.d.Len() == 0 {
		return nil
	}
	e := q.d.PopFront()
	q.signal()
	return e.envelope
}

func (q *boundedDeque) HasMessages() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.d.Len() > 0
}

func (q *boundedDeque) NumberOfMessages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.d.Len()
}

func (q *boundedDeque) CleanUp(owner any, deadLetters DeadLetterSink) {
	q.mu.Lock()
	pending := make([]entry, 0, q.d.Len())
	for q.d.Len() > 0 {
		pending = append(pending, q.d.PopFront())
	}
	q.mu.Unlock()
	q.signal()
	if deadLetters == nil {
		return
	}
	for _, p := range pending {
		receiver := p.receiver
		if receiver == nil {
			receiver = owner
		}
		deadLetters.DeadLetter(receiver, p.envelope)
	}
}
