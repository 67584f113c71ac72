package queue

import (
	"container/list"
	"sync"
)

// unboundedFIFO is the plain unbounded FIFO flavor: non-blocking enqueue,
// non-blocking poll, unbounded capacity. Safe for any number of
// concurrent producers and consumers, though the mailbox core only ever
// uses one consumer.
type unboundedFIFO struct {
	mu sync.Mutex
	l  *list.List
}

// NewUnboundedFIFO returns an unbounded, non-blocking FIFO user queue.
func NewUnboundedFIFO() UserQueue {
	return &unboundedFIFO{l: list.New()}
}

func (q *unboundedFIFO) Enqueue(receiver, envelope any) {
	q.mu.Lock()
	q.l.PushBack(entry{receiver: receiver, envelope: envelope})
	q.mu.Unlock()
}

func (q *unboundedFIFO) Dequeue() any {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.l.Front()
	if front == nil {
		return nil
	}
	q.l.Remove(front)
	return front.Value.(entry).envelope
}

func (q *unboundedFIFO) HasMessages() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len() > 0
}

func (q *unboundedFIFO) NumberOfMessages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}

func (q *unboundedFIFO) CleanUp(owner any, deadLetters DeadLetterSink) {
	q.mu.Lock()
	pending := make([]entry, 0, q.l.Len())
	for e := q.l.Front(); e != nil; e = e.Next() {
		pending = append(pending, e.Value.(entry))
	}
	q.l.Init()
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
