package queue

import (
	"container/heap"
	"sync"
	"time"
)

// Comparator reports whether a sorts strictly before b. Tie-break order
// among equal elements is unspecified; callers must not depend on it.
type Comparator func(a, b any) bool

// priorityEntry is a heap element: the opaque entry plus a monotonically
// increasing sequence number recording insertion order. Less does not
// consult seq, so ordering is decided by the Comparator alone and ties
// break in unspecified order.
type priorityEntry struct {
	entry
	seq int64
}

type priorityHeap struct {
	items []priorityEntry
	less  Comparator
}

func (h *priorityHeap) Len() int { return len(h.items) }

func (h *priorityHeap) Less(i, j int) bool {
	return h.less(h.items[i].envelope, h.items[j].envelope)
}

func (h *priorityHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *priorityHeap) Push(x any) { h.items = append(h.items, x.(priorityEntry)) }

func (h *priorityHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// unboundedPriority is the priority-FIFO flavor: the consumer dequeues in
// Comparator order rather than insertion order. container/heap is the
// idiomatic Go priority collection — no pack example hand-rolls one, they
// all reach for container/heap (or an ordered slice) the way this does.
type unboundedPriority struct {
	mu  sync.Mutex
	h   priorityHeap
	seq int64
}

// NewUnboundedPriority returns an unbounded, non-blocking priority-ordered
// user queue. less defines the Comparator total order; ties break in
// unspecified order.
func NewUnboundedPriority(less Comparator) UserQueue {
	return &unboundedPriority{h: priorityHeap{less: less}}
}

func (q *unboundedPriority) Enqueue(receiver, envelope any) {
	q.mu.Lock()
	q.seq++
	heap.Push(&q.h, priorityEntry{entry: entry{receiver: receiver, envelope: envelope}, seq: q.seq})
	q.mu.Unlock()
}

func (q *unboundedPriority) Dequeue() any {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return nil
	}
	item := heap.Pop(&q.h).(priorityEntry)
	return item.envelope
}

func (q *unboundedPriority) HasMessages() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len() > 0
}

// NumberOfMessages is precise: container/heap's backing slice makes
// len(h) O(1), so there is no tradeoff to make.
func (q *unboundedPriority) NumberOfMessages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}

func (q *unboundedPriority) CleanUp(owner any, deadLetters DeadLetterSink) {
	q.mu.Lock()
	pending := make([]priorityEntry, 0, q.h.Len())
	for q.h.Len() > 0 {
		pending = append(pending, heap.Pop(&q.h).(priorityEntry))
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

// boundedPriority wraps unboundedPriority's unsafe collection in a
// blocking bounded shell, the same pattern boundedDeque uses over
// unboundedDeque.
type boundedPriority struct {
	mu          sync.Mutex
	notEmpty    chan struct{}
	h           priorityHeap
	seq         int64
	capacity    int
	pushTimeout time.Duration
	deadLetters DeadLetterSink
}

// NewBoundedPriority returns a bounded, comparator-ordered user queue.
func NewBoundedPriority(capacity int, pushTimeout time.Duration, less Comparator, deadLetters DeadLetterSink) UserQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &boundedPriority{
		notEmpty:    make(chan struct{}, 1),
		h:           priorityHeap{less: less},
		capacity:    capacity,
		pushTimeout: pushTimeout,
		deadLetters: deadLetters,
	}
}

func (q *boundedPriority) signal() {
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

func (q *boundedPriority) tryPush(e entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && q.h.Len() >= q.capacity {
		return false
	}
	q.seq++
	heap.Push(&q.h, priorityEntry{entry: e, seq: q.seq})
	return true
}

func (q *boundedPriority) Enqueue(receiver, envelope any) {
	e := entry{receiver: receiver, envelope: envelope}
	if q.tryPush(e) {
		q.signal()
		return
	}
	if q.pushTimeout <= 0 {
		for {
			<-q.notEmpty
			if q.tryPush(e) {
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
			if q.tryPush(e) {
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

func (q *boundedPriority) Dequeue() any {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return nil
	}
	item := heap.Pop(&q.h).(priorityEntry)
	q.signal()
	return item.envelope
}

func (q *boundedPriority) HasMessages() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len() > 0
}

func (q *boundedPriority) NumberOfMessages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}

func (q *boundedPriority) CleanUp(owner any, deadLetters DeadLetterSink) {
	q.mu.Lock()
	pending := make([]priorityEntry, 0, q.h.Len())
	for q.h.Len() > 0 {
		pending = append(pending, heap.Pop(&q.h).(priorityEntry))
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
