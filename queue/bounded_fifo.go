package queue

import "time"

// boundedFIFO is the bounded FIFO flavor: offer(msg, timeout) with
// dead-letter diversion on timeout, non-blocking dequeue.
//
// A channel is the natural Go rendition of a bounded blocking/offering
// queue; pushTimeout == 0 switches Enqueue from a timed offer to an
// unbounded-blocking put.
type boundedFIFO struct {
	ch          chan entry
	pushTimeout time.Duration
	deadLetters DeadLetterSink
}

// NewBoundedFIFO returns a bounded FIFO user queue of the given capacity.
// pushTimeout == 0 means Enqueue blocks until space is available;
// pushTimeout > 0 means Enqueue diverts to deadLetters if space does not
// free up within that duration.
// deadLetters may be nil, in which case timed-out envelopes are dropped.
func NewBoundedFIFO(capacity int, pushTimeout time.Duration, deadLetters DeadLetterSink) UserQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &boundedFIFO{ch: make(chan entry, capacity), pushTimeout: pushTimeout, deadLetters: deadLetters}
}

func (q *boundedFIFO) Enqueue(receiver, envelope any) {
	e := entry{receiver: receiver, envelope: envelope}
	if q.pushTimeout <= 0 {
		q.ch <- e
		return
	}
	timer := time.NewTimer(q.pushTimeout)
	defer timer.Stop()
	select {
	case q.ch <- e:
	case <-timer.C:
		if q.deadLetters != nil {
			q.deadLetters.DeadLetter(receiver, envelope)
		}
	}
}

func (q *boundedFIFO) Dequeue() any {
	select {
	case e := <-q.ch:
		return e.envelope
	default:
		return nil
	}
}

func (q *boundedFIFO) HasMessages() bool { return len(q.ch) > 0 }

func (q *boundedFIFO) NumberOfMessages() int { return len(q.ch) }

func (q *boundedFIFO) CleanUp(owner any, deadLetters DeadLetterSink) {
	for {
		select {
		case e := <-q.ch:
			if deadLetters == nil {
				continue
			}
			receiver := e.receiver
			if receiver == nil {
				receiver = owner
			}
			deadLetters.DeadLetter(receiver, e.envelope)
		default:
			return
		}
	}
}
