package queue

import "sync/atomic"

// mpscNode is an intrusively-linked push node: one allocation per Enqueue,
// the same shape as the system message list's Linked nodes in the root
// package, but here the payload is the opaque entry rather than a
// SystemMessage.
type mpscNode struct {
	next  atomic.Pointer[mpscNode]
	entry entry
}

// mpscQueue is the single-consumer-optimized unbounded flavor: a
// lock-free MPSC list. Producers push by CASing onto a shared head (the
// same Treiber-stack trick the system message list uses); the single
// consumer periodically swaps the whole push-stack out and reverses it
// into a local FIFO buffer, so the common-case Dequeue is just a slice
// pop with no CAS at all. It must never be paired with a dispatcher that
// allows concurrent actor runs — Dequeue, HasMessages and
// NumberOfMessages are not safe for concurrent callers.
type mpscQueue struct {
	head  atomic.Pointer[mpscNode]
	local []entry // consumer-owned, already in FIFO order
}

// NewUnboundedMPSC returns an unbounded user queue optimized for exactly
// one consuming goroutine.
func NewUnboundedMPSC() UserQueue {
	return &mpscQueue{}
}

func (q *mpscQueue) Enqueue(receiver, envelope any) {
	n := &mpscNode{entry: entry{receiver: receiver, envelope: envelope}}
	for {
		head := q.head.Load()
		n.next.Store(head)
		if q.head.CompareAndSwap(head, n) {
			return
		}
	}
}

// refill swaps out the producer-side stack and appends it, reversed, to
// the back of q.local, preserving causal (FIFO) order.
func (q *mpscQueue) refill() {
	old := q.head.Swap(nil)
	if old == nil {
		return
	}
	var reversed []entry
	for n := old; n != nil; n = n.next.Load() {
		reversed = append(reversed, n.entry)
	}
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	q.local = append(q.local, reversed...)
}

func (q *mpscQueue) Dequeue() any {
	if len(q.local) == 0 {
		q.refill()
	}
	if len(q.local) == 0 {
		return nil
	}
	e := q.local[0]
	q.local = q.local[1:]
	return e.envelope
}

func (q *mpscQueue) HasMessages() bool {
	if len(q.local) > 0 {
		return true
	}
	return q.head.Load() != nil
}

// NumberOfMessages is a conservative hint: it counts the consumer-local
// buffer exactly and walks the producer-side stack without synchronizing
// against concurrent pushes.
func (q *mpscQueue) NumberOfMessages() int {
	n := len(q.local)
	for p := q.head.Load(); p != nil; p = p.next.Load() {
		n++
	}
	return n
}

func (q *mpscQueue) CleanUp(owner any, deadLetters DeadLetterSink) {
	q.refill()
	pending := q.local
	q.local = nil
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
